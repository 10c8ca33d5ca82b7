// Package app wires configuration into the running daemon.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/managers"
	"github.com/homas01123/trios/internal/pipeline"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, &wg, a.configProvider)
	if err != nil {
		return err
	}

	// Create the inversion backend and provision its R environment up front
	backend := saber.NewRScriptBackend(cfgData.Saber, a.logger)
	if err := backend.Environment().Ensure(ctx); err != nil {
		return err
	}

	// Initialize the instrument manager
	im, err := managers.NewInstrumentManager(ctx, &wg, a.configProvider, a.logger)
	if err != nil {
		return err
	}
	im.StartInstruments()

	// Start the retrieval processor between instruments and storage
	processor := pipeline.New(cfgData.Processing, backend, storageManager.RetrievalDistributor, a.logger)
	processor.Start(ctx, &wg, im.ScanDistributor)

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, backend, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
