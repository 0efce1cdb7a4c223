// Package main is the entry point for the Nebenkosten API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nebenkosten/internal/config"
	"nebenkosten/internal/domain/calculation"
	"nebenkosten/internal/domain/plausibility"
	v1 "nebenkosten/internal/infrastructure/http/v1"
	"nebenkosten/internal/infrastructure/metrics"
	"nebenkosten/internal/infrastructure/storage"
	"nebenkosten/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $NK_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Errorw("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting nebenkosten server", "version", version, "storage", cfg.Storage.Driver)

	// --- Storage ---
	blobs, release, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer release()

	// --- Metrics ---
	m := metrics.New()

	// --- Calculation store ---
	store := calculation.New(ctx, blobs,
		calculation.WithLogger(log),
		calculation.WithRecorder(m),
		calculation.WithStorageKey(cfg.Storage.Key),
		calculation.WithWriteTimeout(cfg.Storage.WriteTimeout),
	)

	// --- Plausibility ---
	checker, err := plausibility.NewChecker(cfg.PlausibilityRules())
	if err != nil {
		return fmt.Errorf("compile plausibility rules: %w", err)
	}
	log.Infow("plausibility rules loaded", "count", len(checker.Rules()))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Store:         store,
		Checker:       checker,
		Metrics:       m,
		Logger:        log,
		StorageDriver: cfg.Storage.Driver,
		Version:       version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			_ = store.Close(context.Background())
			return err
		}
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("server forced to shutdown", "error", err)
	}
	// Pending snapshot must reach storage before the pool is released.
	if err := store.Close(shutdownCtx); err != nil {
		log.Warnw("flush calculation on shutdown failed", "error", err)
	}

	log.Info("server stopped")
	return nil
}
