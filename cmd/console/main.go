package main

import (
	"fmt"
	"log/slog"
	"os"

	"fileconsole/internal/console"
	"fileconsole/internal/logger"
)

func main() {
	logHandler := logger.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	slog.SetDefault(slog.New(logHandler))

	if err := console.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
