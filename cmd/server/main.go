package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/garnizeh/devmatch/api"
	dbfs "github.com/garnizeh/devmatch/db"
	"github.com/garnizeh/devmatch/internal/config"
	"github.com/garnizeh/devmatch/internal/db"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// Missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.DevMode)
	slog.SetDefault(logger)
	api.SetLogger(logger)
	api.SetDevMode(cfg.DevMode)

	logger.Info("starting devmatch server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	// Open database connection
	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open DB", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	handler, err := api.SetupRoutes(cfg, version, buildTime, conn)
	if err != nil {
		logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		logger.Error("error closing DB", "error", err)
	}

	logger.Info("server exited")
}

// newLogger picks a colorized text handler for local development and JSON
// for everything else.
func newLogger(devMode bool) *slog.Logger {
	if devMode {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
