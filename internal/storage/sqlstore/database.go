package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mssql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverMSSQL    = "mssql"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	LogMode      bool
}

// Database открывает подключение лениво - при первом обращении к любому контексту.
// Если открыть не удалось, следующая попытка будет сделана при следующем обращении.
type Database struct {
	mu   sync.Mutex
	db   *gorm.DB
	cfg  Config
	open func() (*gorm.DB, error)
}

func New(cfg Config) (*Database, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverMSSQL, DriverSQLite:
	case "":
		return nil, fmt.Errorf("%w: database driver is not set", storage.ErrConnection)
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", storage.ErrConnection, cfg.Driver)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: connection string is empty", storage.ErrConnection)
	}

	d := &Database{cfg: cfg}
	d.open = func() (*gorm.DB, error) {
		dsn := cfg.DSN
		if cfg.Driver == DriverSQLite {
			dsn = sqliteDSN(dsn)
		}
		return gorm.Open(cfg.Driver, dsn)
	}
	return d, nil
}

// NewWithConnection использует уже открытый *sql.DB (для тестов с sqlmock)
func NewWithConnection(dialect string, conn *sql.DB) *Database {
	return &Database{
		cfg: Config{Driver: dialect},
		open: func() (*gorm.DB, error) {
			return gorm.Open(dialect, conn)
		},
	}
}

// NewWithDB оборачивает готовый *gorm.DB, подключение считается уже открытым
func NewWithDB(db *gorm.DB) *Database {
	return &Database{db: db, cfg: Config{Driver: db.Dialect().GetName()}}
}

// sqliteDSN включает проверку внешних ключей, в SQLite она выключена по умолчанию
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

func (d *Database) conn() (*gorm.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return d.db, nil
	}
	if d.open == nil {
		return nil, fmt.Errorf("%w: database is closed", storage.ErrConnection)
	}

	db, err := d.open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to the database: %v", storage.ErrConnection, err)
	}

	if d.cfg.Driver == DriverSQLite {
		// одно соединение: ":memory:" живет ровно столько, сколько соединение, а PRAGMA действует на соединение
		db.DB().SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: could not enable foreign keys: %v", storage.ErrConnection, err)
		}
	} else if d.cfg.MaxOpenConns > 0 {
		db.DB().SetMaxOpenConns(d.cfg.MaxOpenConns)
	}
	db.LogMode(d.cfg.LogMode)

	d.db = db
	log.Printf("Successfully connected to the database (%s).", d.cfg.Driver)
	return d.db, nil
}

// Migrate создает таблицы средствами gorm AutoMigrate. Порядок важен:
// blog_posts должна существовать раньше, чем comments ссылается на нее.
func (d *Database) Migrate() error {
	db, err := d.conn()
	if err != nil {
		return err
	}

	err = db.AutoMigrate(&models.BlogPost{}, &models.Comment{}, &models.User{}).Error
	if err != nil {
		return translateError("failed to migrate database", err)
	}
	return nil
}

// Close закрывает пул соединений. После Close база больше не переоткрывается.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = nil
	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	log.Println("Database connection closed.")
	return nil
}

func (d *Database) NewContext(ctx context.Context) storage.BlogContext {
	return newContext(d)
}
