// Package storage selects the blob store backing the calculation.
package storage

import (
	"context"
	"fmt"

	"nebenkosten/internal/config"
	"nebenkosten/internal/domain/calculation"
	"nebenkosten/internal/infrastructure/storage/file"
	"nebenkosten/internal/infrastructure/storage/memory"
	"nebenkosten/internal/infrastructure/storage/postgres"
)

// Open returns the blob store for cfg.Driver and a function releasing it.
func Open(ctx context.Context, cfg config.StorageConfig) (calculation.BlobStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil

	case config.DriverFile:
		fs, err := file.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DSN))
		if err != nil {
			return nil, nil, err
		}
		blobs, err := postgres.NewBlobStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := blobs.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return blobs, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
