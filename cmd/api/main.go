package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/internal/app"
	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/queue"
	"task-tracker/internal/routes"
	"task-tracker/pkg/logger"

	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "", "config file (hujson); defaults to "+config.DefaultFile+" if present")
	dbPath := flag.String("db", "", "SQLite database path (overrides DATABASE_PATH)")
	port := flag.StringP("port", "p", "", "HTTP port (overrides HTTP_PORT)")
	flag.Parse()

	config.LoadEnvFile(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *port != "" {
		cfg.HTTPPort = *port
	}
	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logger.Error(context.Background(), "Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error(ctx, "Shutdown cleanup failed", "error", err)
		}
	}()

	// Create the events topic (optional; publishing works without it on auto-create brokers)
	queue.EnsureTopic(ctx, a.QueueConfig())

	ready := controller.Ready(map[string]controller.Pinger{"database": a.Store, "redis": a.Cache})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(controller.NewTasks(a.Tasks, a.Cache), ready),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}

	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}
