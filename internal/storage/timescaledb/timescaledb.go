// Package timescaledb stores retrievals in a TimescaleDB hypertable.
package timescaledb

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/homas01123/trios/internal/database"
	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS retrievals (
	time        TIMESTAMPTZ       NOT NULL,
	scanid      TEXT              NOT NULL,
	instrumentname TEXT           NOT NULL,
	method      TEXT              NOT NULL,
	mode        TEXT              NOT NULL,
	chl         DOUBLE PRECISION  NULL,
	chlunc      DOUBLE PRECISION  NULL,
	ag440       DOUBLE PRECISION  NULL,
	ag440unc    DOUBLE PRECISION  NULL,
	bbp550      DOUBLE PRECISION  NULL,
	bbp550unc   DOUBLE PRECISION  NULL,
	converged   BOOLEAN           NULL,
	iterations  INTEGER           NULL,
	datapoints  INTEGER           NULL,
	residual    DOUBLE PRECISION  NULL
)`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb`

const createHypertableSQL = `SELECT create_hypertable('retrievals', 'time', if_not_exists => TRUE)`

// Storage holds the connection for a TimescaleDB storage backend
type Storage struct {
	db *gorm.DB
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, c *config.TimescaleDBData) (*Storage, error) {
	t := Storage{}

	var err error
	t.db, err = database.CreateConnection(c.ConnectionString)
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}

	log.Info("creating retrievals table...")
	if err := t.db.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		return nil, err
	}

	log.Info("creating TimescaleDB extension...")
	if err := t.db.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		return nil, err
	}

	log.Info("creating retrievals hypertable...")
	if err := t.db.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		return nil, err
	}

	return &t, nil
}

// StartStorageEngine creates a goroutine loop to receive retrievals and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Retrieval {
	log.Info("starting TimescaleDB storage engine...")
	retrievalChan := make(chan types.Retrieval, 10)
	go t.processRetrievals(ctx, wg, retrievalChan)
	return retrievalChan
}

func (t *Storage) processRetrievals(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Retrieval) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := t.StoreRetrieval(&r); err != nil {
				log.Error("could not store retrieval:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received, stopping TimescaleDB retrieval processor")
			return
		}
	}
}

// StoreRetrieval stores a single retrieval row
func (t *Storage) StoreRetrieval(r *types.Retrieval) error {
	return t.db.Create(r).Error
}
