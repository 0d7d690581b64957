package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/internal/config"
	"github.com/VitaminP8/blogapp/internal/middleware"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/storage/memory"
	"github.com/VitaminP8/blogapp/internal/storage/sqlstore"
	"github.com/VitaminP8/blogapp/internal/subscription"
	"github.com/VitaminP8/blogapp/internal/web"
)

type App struct {
	cfg     *config.Config
	factory storage.Factory
	hub     *subscription.SubscriptionManager
	handler http.Handler
}

// NewFactory выбирает хранилище по конфигурации. SQL подключение открывается лениво.
func NewFactory(cfg *config.Config) (storage.Factory, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Println("Используется in-memory хранилище")
		return memory.NewStore(), nil
	case config.StorageSQL:
		db, err := sqlstore.New(sqlstore.Config{
			Driver:       cfg.Database.Driver,
			DSN:          cfg.ConnectionString(config.DefaultConnection),
			MaxOpenConns: cfg.Database.MaxOpenConns,
			LogMode:      cfg.Database.LogMode,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Используется SQL хранилище (%s)", cfg.Database.Driver)
		return db, nil
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %s", cfg.Storage)
	}
}

// New регистрирует хранилище, создает схему и собирает конвейер обработки запросов
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	factory, err := NewFactory(cfg)
	if err != nil {
		return nil, err
	}
	if err := factory.Migrate(); err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return NewWithFactory(cfg, factory), nil
}

func NewWithFactory(cfg *config.Config, factory storage.Factory) *App {
	a := &App{
		cfg:     cfg,
		factory: factory,
		hub:     subscription.NewSubscriptionManager(),
	}

	router := web.NewRouter(web.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		Development:   cfg.IsDevelopment(),
		Subscriptions: a.hub,
	})
	a.handler = Pipeline(cfg, factory, router)
	return a
}

// Pipeline собирает middleware в фиксированном порядке:
// логирование, обработка паник (+HSTS вне Development), HTTPS редирект,
// статические файлы, авторизация, BlogContext на запрос, маршрутизация.
func Pipeline(cfg *config.Config, factory storage.Factory, router http.Handler) http.Handler {
	stages := []func(http.Handler) http.Handler{
		middleware.RequestLogger,
		middleware.ExceptionHandler(cfg.IsDevelopment(), cfg.Server.ErrorPath),
	}
	if !cfg.IsDevelopment() {
		stages = append(stages, middleware.HSTS)
	}
	stages = append(stages,
		middleware.HTTPSRedirection(cfg.Server.HTTPSPort),
		middleware.StaticFiles(cfg.Server.StaticDir),
		auth.Authorization(cfg.Auth.JWTSecret),
		middleware.Scoped(factory),
	)
	return middleware.Chain(router, stages...)
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Factory() storage.Factory {
	return a.factory
}

// Run слушает cfg.Server.Addr (и HTTPS порт, если задан сертификат) до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", a.cfg.Server.Addr, err)
	}

	var tlsLn net.Listener
	if a.cfg.TLSEnabled() {
		port := a.cfg.Server.HTTPSPort
		if port == 0 {
			port = 443
		}
		tlsLn, err = net.Listen("tcp", ":"+strconv.Itoa(port))
		if err != nil {
			ln.Close()
			return fmt.Errorf("could not listen on HTTPS port %d: %w", port, err)
		}
	}
	return a.Serve(ctx, ln, tlsLn)
}

// Serve обслуживает готовые listener'ы. tlsLn может быть nil.
func (a *App) Serve(ctx context.Context, ln, tlsLn net.Listener) error {
	// отмена baseCtx завершает долгие запросы (SSE поток) при остановке
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	base := func(net.Listener) context.Context { return baseCtx }

	httpServer := &http.Server{Handler: a.handler, BaseContext: base}
	servers := []*http.Server{httpServer}
	errs := make(chan error, 2)

	// строка не возвращается, пока не выполнится Shutdown или не произойдет ошибка,
	// поэтому запускаем в goroutine
	go func() {
		log.Printf("Сервер запущен на http://%s/", ln.Addr())
		errs <- httpServer.Serve(ln)
	}()

	if tlsLn != nil {
		tlsServer := &http.Server{Handler: a.handler, BaseContext: base}
		servers = append(servers, tlsServer)
		go func() {
			log.Printf("HTTPS сервер запущен на https://%s/", tlsLn.Addr())
			errs <- tlsServer.ServeTLS(tlsLn, a.cfg.Server.CertFile, a.cfg.Server.KeyFile)
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("Завершение...")
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	}

	cancelRequests()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
			serveErr = fmt.Errorf("error while shutting down server: %w", err)
		}
	}

	if serveErr == nil {
		log.Println("Сервер остановлен корректно")
	}
	return serveErr
}

// Close освобождает подключение к хранилищу
func (a *App) Close() error {
	return a.factory.Close()
}
