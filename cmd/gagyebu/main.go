package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gagyebu/internal/config"
	apphttp "gagyebu/internal/http"
	"gagyebu/internal/ledger"
	"gagyebu/internal/ledger/memory"
	"gagyebu/internal/ledger/script"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var backend ledger.Backend
	switch cfg.DataBackend {
	case "script":
		cli, err := script.New(script.Config{URL: cfg.ScriptURL, APIKey: cfg.ScriptAPIKey})
		if err != nil {
			logger.Error("Failed to initialize script backend", "error", err, "backend", cfg.DataBackend)
			os.Exit(1)
		}
		backend = cli
		logger.Info("Initialized script backend", "backend", cfg.DataBackend)
	default:
		// Seed payment options from ./data if present.
		backend = memory.NewFromFiles("data")
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	svc := services.NewEntryService(backend, cfg.OptionsCacheTTL)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting gagyebu server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
