// Command client loads one game through the state manager and prints the
// exported snapshot. It is mostly useful for checking a storage backend and
// a running server together.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/config"
	"github.com/DoyleJ11/marathon-draft/internal/events"
	"github.com/DoyleJ11/marathon-draft/internal/logging"
	"github.com/DoyleJ11/marathon-draft/internal/manager"
	"github.com/DoyleJ11/marathon-draft/internal/remote"
	"github.com/DoyleJ11/marathon-draft/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	gameID := flag.String("game", "", "game id to load (defaults to the stored one)")
	results := flag.Bool("results", false, "also load results")
	force := flag.Bool("force", false, "bypass the cache")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.Must(cfg.Manager.Debug)
	if err := run(cfg, logger, *gameID, *results, *force); err != nil {
		logger.Error("client failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger, gameID string, withResults, force bool) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	m, err := manager.New(manager.Config{
		Storage:           store,
		Source:            remote.NewHTTPClient(cfg.Remote.BaseURL, nil, time.Duration(cfg.Remote.Timeout)*time.Second),
		GameStateCacheTTL: cfg.Manager.GameStateTTL(),
		ResultsCacheTTL:   cfg.Manager.ResultsTTL(),
		StorageTimeout:    cfg.Manager.StorageTimeoutDuration(),
		Debug:             cfg.Manager.Debug,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	manager.SetDefault(m)

	events.Subscribe(m.Bus(), func(e events.GameStateUpdated) {
		logger.Debug("game state updated", zap.Int("players", len(e.State.Players)))
	})

	if gameID == "" {
		gameID = m.CurrentGameID()
	}
	if gameID == "" {
		return manager.ErrEmptyGameID
	}

	if _, err := m.LoadGameState(ctx, gameID, force); err != nil {
		return err
	}
	if withResults {
		if _, err := m.LoadResults(ctx, gameID, force); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m.ExportState())
}
