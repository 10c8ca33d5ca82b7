// Package sqlite stores retrievals in a local SQLite database, for
// deployments without a TimescaleDB server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS retrievals (
	time        TIMESTAMP NOT NULL,
	scanid      TEXT      NOT NULL,
	instrumentname TEXT   NOT NULL,
	method      TEXT      NOT NULL,
	mode        TEXT      NOT NULL,
	chl         REAL,
	chlunc      REAL,
	ag440       REAL,
	ag440unc    REAL,
	bbp550      REAL,
	bbp550unc   REAL,
	converged   INTEGER,
	iterations  INTEGER,
	datapoints  INTEGER,
	residual    REAL
)`

const insertSQL = `INSERT INTO retrievals
	(time, scanid, instrumentname, method, mode,
	 chl, chlunc, ag440, ag440unc, bbp550, bbp550unc,
	 converged, iterations, datapoints, residual)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Storage holds the connection for a SQLite storage backend
type Storage struct {
	db *sql.DB
}

// New sets up a new SQLite storage backend at the configured path
func New(ctx context.Context, c *config.SQLiteData) (*Storage, error) {
	db, err := sql.Open("sqlite", c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", c.Path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database %s: %w", c.Path, err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create retrievals table: %w", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive retrievals and
// write them to the local database
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Retrieval {
	log.Info("starting SQLite storage engine...")
	retrievalChan := make(chan types.Retrieval, 10)
	go s.processRetrievals(ctx, wg, retrievalChan)
	return retrievalChan
}

func (s *Storage) processRetrievals(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Retrieval) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreRetrieval(ctx, &r); err != nil {
				log.Error("could not store retrieval:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received, stopping SQLite retrieval processor")
			s.db.Close()
			return
		}
	}
}

// StoreRetrieval stores a single retrieval row
func (s *Storage) StoreRetrieval(ctx context.Context, r *types.Retrieval) error {
	_, err := s.db.ExecContext(ctx, insertSQL,
		r.Timestamp, r.ScanID, r.InstrumentName, r.Method, r.Mode,
		r.Chl, r.ChlUncertainty, r.AG440, r.AG440Uncertainty,
		r.BBP550, r.BBPUncertainty,
		r.Converged, r.Iterations, r.DataPoints, r.Residual)
	return err
}
