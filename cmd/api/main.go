package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sellerledger-sync/internal/api"
	"github.com/sellerledger-sync/internal/api/service"
	"github.com/sellerledger-sync/internal/config"
	datamongo "github.com/sellerledger-sync/internal/data/mongo"
	datapostgres "github.com/sellerledger-sync/internal/data/postgres"
	"github.com/sellerledger-sync/internal/exporter"
	"github.com/sellerledger-sync/internal/ingest"
	"github.com/sellerledger-sync/internal/logger"
	"github.com/sellerledger-sync/internal/platform/messaging/producers"
	"github.com/sellerledger-sync/internal/platform/persistence"
	"github.com/sellerledger-sync/internal/platform/providers"
	"github.com/sellerledger-sync/internal/platform/providers/quickbooks"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producers for export-completed notifications
	eventProducer, err := producers.NewExportEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize export event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	recordRepo := datapostgres.NewRecordRepository(log, postgresDB)
	mappingRepo := datapostgres.NewMappingRepository(log, postgresDB)
	credentialRepo := datapostgres.NewCredentialRepository(log, postgresDB)
	exportRepo := datamongo.NewExportRepository(log, mongoDB.Database())

	// Initialize the ledger provider clients. Only QuickBooks posts; Xero is
	// served in preview mode by the committer.
	quickbooksClient := quickbooks.NewClient(log, &cfg.QuickBooks)

	// Initialize the export pipeline
	builder := exporter.NewBuilder()
	resolver := exporter.NewResolver(log, mappingRepo)
	committer := exporter.NewCommitter(
		log,
		resolver,
		credentialRepo,
		exportRepo,
		[]providers.LedgerProvider{quickbooksClient},
		eventProducer,
		dlqProducer,
		cfg.Export.DryRunOverride,
		cfg.Export.RequestTimeout,
	)
	verifier := exporter.NewVerifier(log, committer)
	exportService := exporter.NewService(log, recordRepo, exportRepo, builder, resolver, committer, verifier)

	// Initialize the import pipeline
	importService, err := ingest.NewService(log, recordRepo, cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize import service", "error", err)
		os.Exit(1)
	}

	mappingService := service.NewMappingService(log, mappingRepo)

	// Initialize REST server
	server := api.NewServer(log, cfg, importService, exportService, mappingService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server before the stores it depends on
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the import worker pool
	importService.Shutdown()

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing export event producer", "error", err)
	}
	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
