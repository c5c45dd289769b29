package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoice-reconciliation-service/internal/infrastructure/bootstrap"
	"invoice-reconciliation-service/internal/infrastructure/config"
	"invoice-reconciliation-service/internal/infrastructure/router"
	"invoice-reconciliation-service/internal/interface/handler"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Invoice Reconciliation Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("Failed to initialise application", "error", err)
	}

	h := handler.NewReconciliationHandler(app.Reconciliation, app.Dispatcher, app.Exporter, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewHTTPRouter(h, prometheus.DefaultGatherer, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	app.Close(shutdownCtx)

	log.Info("Invoice Reconciliation Service stopped")
}
