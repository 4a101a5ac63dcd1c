// Package app wires the configuration, storage, services and HTTP server
// together and runs the process until the context is canceled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	api "github.com/mkarpenko/url-shortener/internal/api/http"
	"github.com/mkarpenko/url-shortener/internal/config"
	"github.com/mkarpenko/url-shortener/internal/service"
	"github.com/mkarpenko/url-shortener/internal/shortcode"
	"github.com/mkarpenko/url-shortener/internal/storage/memory"
	"github.com/mkarpenko/url-shortener/internal/storage/postgres"
	"golang.org/x/sync/errgroup"
)

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:       slog.LevelDebug,
		Concise:        true,
		RequestHeaders: true,
	}

	if env == config.EnvProd {
		opts = httplog.Options{
			LogLevel: slog.LevelInfo,
			JSON:     true,
		}
	}

	return httplog.NewLogger("url-shortener", opts)
}

func newURLStore(cfg *config.Config) (service.URLStore, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.NewURLRepository(), func() error { return nil }, nil
	default:
		db, err := postgres.New(cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, err
		}

		db.SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)

		if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
			db.Close()
			return nil, nil, err
		}

		return postgres.NewURLRepository(db), db.Close, nil
	}
}

// Run starts the application and blocks until ctx is canceled or a fatal
// error occurs.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg.Env)

	store, closeStore, err := newURLStore(cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize storage: %w", op, err)
	}
	defer closeStore()

	urlSvc := service.NewURLService(store, shortcode.New())
	router := api.NewRouter(logger, urlSvc, cfg.BaseURL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	logger.Info("server starting",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage),
		slog.String("addr", server.Addr),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
