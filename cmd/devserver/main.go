package main

import (
	"log/slog"
	"os"

	"fileconsole/internal/config"
	"fileconsole/internal/logger"
	"fileconsole/internal/server"
)

func main() {
	logHandler := logger.NewPrettyHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app, err := server.New(cfg)
	if err != nil {
		slog.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		slog.Error("server run failed", "error", err)
		os.Exit(1)
	}
}
