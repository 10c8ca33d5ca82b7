// Package managers wires configuration to running instruments, storage
// engines, and controllers.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/storage"
	"github.com/homas01123/trios/internal/storage/sqlite"
	"github.com/homas01123/trios/internal/storage/timescaledb"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines              []StorageEngine
	RetrievalDistributor chan types.Retrieval
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing retrievals to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Retrieval
}

// NewStorageManager creates a StorageManager object, populated with all configured StorageEngines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider) (*StorageManager, error) {
	storageConfig, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage config: %w", err)
	}

	s := StorageManager{
		RetrievalDistributor: make(chan types.Retrieval, 20),
	}

	go s.startRetrievalDistributor(ctx, wg)

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		engine, err := timescaledb.New(ctx, storageConfig.TimescaleDB)
		if err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		s.Engines = append(s.Engines, StorageEngine{
			Engine: engine,
			C:      engine.StartStorageEngine(ctx, wg),
		})
	}

	if storageConfig.SQLite != nil && storageConfig.SQLite.Path != "" {
		engine, err := sqlite.New(ctx, storageConfig.SQLite)
		if err != nil {
			return &s, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		s.Engines = append(s.Engines, StorageEngine{
			Engine: engine,
			C:      engine.StartStorageEngine(ctx, wg),
		})
	}

	return &s, nil
}

// startRetrievalDistributor receives retrievals from the pipeline and fans
// them out to the various storage backends
func (s *StorageManager) startRetrievalDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.RetrievalDistributor:
			for _, engine := range s.Engines {
				select {
				case engine.C <- r:
				default:
					log.Warn("storage engine channel full, dropping retrieval")
				}
			}
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling retrieval distributor.")
			return
		}
	}
}
