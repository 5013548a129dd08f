package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/marathon-draft/internal/config"
)

// Open builds the adapter named by cfg.Driver. The returned close func
// releases every connection that was opened.
func Open(ctx context.Context, cfg config.StorageConfig) (*KV, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		return err
	}

	var backend Backend
	switch cfg.DriverName() {
	case "memory", "":
		backend = NewMemoryBackend()

	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		backend = NewRedisBackend(client, time.Duration(cfg.Redis.KeyTTL)*time.Second)

	case "sqlite":
		b, err := NewSQLiteBackend(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, b.Close)
		backend = b

	case "postgres":
		db, err := OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		b, err := NewGormBackend(ctx, db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				err = multierr.Append(err, sqlDB.Close())
			}
			return nil, nil, err
		}
		closers = append(closers, b.Close)
		backend = b

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	return NewKV(backend, cfg.Namespace), closeAll, nil
}
