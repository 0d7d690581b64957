package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConnection - имя строки подключения, которую использует приложение
	DefaultConnection = "DefaultConnection"

	Development = "Development"
	Production  = "Production"

	StorageSQL    = "sql"
	StorageMemory = "memory"

	connectionStringEnvPrefix = "ConnectionStrings__"
)

type Config struct {
	Environment       string            `yaml:"environment"`
	Storage           string            `yaml:"storage"`
	ConnectionStrings map[string]string `yaml:"connectionStrings"`
	Database          DatabaseConfig    `yaml:"database"`
	Server            ServerConfig      `yaml:"server"`
	Auth              AuthConfig        `yaml:"auth"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	LogMode      bool   `yaml:"logMode"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	HTTPSPort       int           `yaml:"httpsPort"`
	CertFile        string        `yaml:"certFile"`
	KeyFile         string        `yaml:"keyFile"`
	StaticDir       string        `yaml:"staticDir"`
	ErrorPath       string        `yaml:"errorPath"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// LoadEnv загружает .env, если он есть
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

// GetEnv возвращает значение переменной окружения или fallback
func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func Default() *Config {
	return &Config{
		Environment:       Production,
		Storage:           StorageSQL,
		ConnectionStrings: map[string]string{},
		Database: DatabaseConfig{
			Driver: "sqlite3",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "wwwroot",
			ErrorPath:       "/Home/Error",
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 72 * time.Hour,
		},
	}
}

// Load читает appsettings.yaml (или файл из path), затем appsettings.<Environment>.yaml,
// затем .env и переменные окружения. Каждый следующий источник перекрывает предыдущий.
// Validate вызывается отдельно, после применения флагов командной строки.
func Load(path string) (*Config, error) {
	LoadEnv()

	cfg := Default()

	if path == "" {
		for _, loc := range []string{"appsettings.yaml", "appsettings.yml"} {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if env := os.Getenv("BLOG_ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if path != "" {
		ext := filepath.Ext(path)
		overlay := strings.TrimSuffix(path, ext) + "." + cfg.Environment + ext
		if _, err := os.Stat(overlay); err == nil {
			if err := cfg.readFile(overlay); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if c.ConnectionStrings == nil {
		c.ConnectionStrings = map[string]string{}
	}
	return nil
}

func (c *Config) applyEnv() error {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, connectionStringEnvPrefix) {
			continue
		}
		c.ConnectionStrings[strings.TrimPrefix(key, connectionStringEnvPrefix)] = value
	}

	c.Storage = GetEnv("STORAGE", c.Storage)
	c.Database.Driver = GetEnv("DB_DRIVER", c.Database.Driver)
	c.Auth.JWTSecret = GetEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Server.Addr = GetEnv("SERVER_ADDR", c.Server.Addr)

	if port := os.Getenv("HTTPS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid HTTPS_PORT %q: %w", port, err)
		}
		c.Server.HTTPSPort = p
	}

	// старый способ из .env: отдельные переменные для PostgreSQL
	if c.ConnectionString(DefaultConnection) == "" && os.Getenv("DB_HOST") != "" {
		c.Database.Driver = "postgres"
		c.ConnectionStrings[DefaultConnection] = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			GetEnv("DB_PORT", "5432"),
			GetEnv("DB_SSLMODE", "disable"),
		)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQL:
		if c.ConnectionString(DefaultConnection) == "" {
			return errors.New("connection string " + DefaultConnection + " is not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage)
	}

	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return errors.New("server.certFile and server.keyFile must be set together")
	}
	return nil
}

// ConnectionString возвращает строку подключения по имени (пустую, если ее нет)
func (c *Config) ConnectionString(name string) string {
	return strings.TrimSpace(c.ConnectionStrings[name])
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, Development)
}

func (c *Config) TLSEnabled() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}
