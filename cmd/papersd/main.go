package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
)

func main() {
	cfg, err := appconf.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := BuildApplication(cfg)
	if err != nil {
		slog.Error("unable to build application", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.PaperStore.Close() }()

	srv, rateLimiter, responseCache := CreateServer(application)
	defer rateLimiter.Stop()
	defer responseCache.Close()
	if application.Metrics != nil {
		defer application.Metrics.Shutdown()
	}

	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		logging.LogOperation(application.Logger, "shutting_down",
			slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logging.LogOperation(application.Logger, "server_start",
		slog.Int("port", cfg.Port),
		slog.String("env", cfg.Env.String()),
		slog.String("db_path", cfg.DBPath))

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logging.LogError(application.Logger, "server error", err)
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logging.LogError(application.Logger, "shutdown error", err)
		os.Exit(1)
	}

	logging.LogOperation(application.Logger, "server_stop")
}
