package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	if c.Manager.GameStateCacheTTL < 0 {
		return errors.New("manager.gameStateCacheTTL must not be negative")
	}
	if c.Manager.ResultsCacheTTL < 0 {
		return errors.New("manager.resultsCacheTTL must not be negative")
	}
	if c.Manager.StorageTimeout < 1 {
		return errors.New("manager.storageTimeout must be at least 1ms")
	}

	switch c.Storage.DriverName() {
	case "memory":
	case "redis":
		if c.Storage.Redis.Address == "" {
			return errors.New("storage.redis.address must be set for the redis driver")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path must be set for the sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s. Must be 'memory', 'redis', 'sqlite' or 'postgres'", c.Storage.Driver)
	}

	if c.Remote.BaseURL == "" {
		return errors.New("remote.baseURL must be set")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}
	return nil
}
