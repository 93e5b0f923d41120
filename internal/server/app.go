package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fileconsole/internal/config"
	"fileconsole/internal/server/store"
)

// App bundles the dev server: config, a store picked by DATABASE_URL, and
// the HTTP server with graceful shutdown.
type App struct {
	server *http.Server
	store  store.Store
}

func New(cfg *config.Config) (*App, error) {
	var (
		fileStore store.Store
		err       error
	)
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		fileStore, err = store.NewPostgres(context.Background(), cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
	} else {
		slog.Info("using in-memory store")
		fileStore = store.NewMemory()
	}

	filesHandler := NewFilesHandler(fileStore, cfg.MaxUploadSize)
	router := NewRouter(cfg, filesHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, store: fileStore}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.store.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.store.Close()

	slog.Info("server stopped")
	return nil
}
