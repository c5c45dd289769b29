package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"invoice-reconciliation-service/internal/infrastructure/bootstrap"
	"invoice-reconciliation-service/internal/infrastructure/config"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	force := flag.Bool("force", false, "rebuild even when the reconciliation table is not empty")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		log.Fatal("Failed to initialise application", "error", err)
	}

	result, err := app.Reconciliation.Populate(ctx, *force)
	app.Close(context.Background())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		log.Error("Failed to encode result", "error", encErr)
	}

	// A refused rebuild is reported in the result and is not a failure
	if err != nil {
		log.Sync()
		os.Exit(1)
	}
}
