// Package manager holds the client-side game state manager: the single owner
// of game, team session and commissioner state for one process.
package manager

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/marathon-draft/internal/events"
	"github.com/DoyleJ11/marathon-draft/internal/logging"
	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/remote"
	"github.com/DoyleJ11/marathon-draft/internal/state"
	"github.com/DoyleJ11/marathon-draft/internal/storage"
)

var ErrNoStorage = errors.New("storage adapter is required")
var ErrNoSource = errors.New("no remote source configured")
var ErrEmptyGameID = errors.New("game id is empty")

const (
	DefaultGameStateCacheTTL = 60 * time.Second
	DefaultResultsCacheTTL   = 30 * time.Second
	DefaultStorageTimeout    = 2 * time.Second
)

type Config struct {
	Storage storage.Adapter
	Source  remote.Source

	// Zero values fall back to the defaults above.
	GameStateCacheTTL time.Duration
	ResultsCacheTTL   time.Duration
	StorageTimeout    time.Duration

	// Debug enables verbose logging only.
	Debug  bool
	Logger *zap.Logger

	// Now is the clock used for freshness and expiry checks.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.GameStateCacheTTL <= 0 {
		c.GameStateCacheTTL = DefaultGameStateCacheTTL
	}
	if c.ResultsCacheTTL <= 0 {
		c.ResultsCacheTTL = DefaultResultsCacheTTL
	}
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = DefaultStorageTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type Manager struct {
	cfg Config
	log *zap.Logger
	bus *events.Bus

	// mu guards everything below. It is never held while listeners run or
	// while a remote call is in flight.
	mu             sync.Mutex
	game           state.GameState
	session        state.SessionState
	commissioner   state.CommissionerState
	currentGameID  string
	gameFetchedAt  map[string]time.Time
	results        map[string]map[string]string
	resultsFetchAt map[string]time.Time
}

// New builds a manager and hydrates the session slices from storage. No
// remote fetch happens here.
func New(cfg Config) (*Manager, error) {
	if cfg.Storage == nil {
		return nil, ErrNoStorage
	}
	cfg = cfg.withDefaults()

	log := cfg.Logger
	switch {
	case log == nil && cfg.Debug:
		l, err := logging.New(true)
		if err != nil {
			return nil, err
		}
		log = l
	case log == nil:
		log = zap.NewNop()
	case !cfg.Debug:
		log = log.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
	}
	log = log.Named("state")

	m := &Manager{
		cfg:            cfg,
		log:            log,
		bus:            events.NewBus(log),
		game:           state.NewGameState(),
		gameFetchedAt:  make(map[string]time.Time),
		results:        make(map[string]map[string]string),
		resultsFetchAt: make(map[string]time.Time),
	}
	m.bus.OnEmit(func(n events.Name) {
		metrics.EventsEmitted.WithLabelValues(string(n)).Inc()
	})
	m.hydrate()
	return m, nil
}

func (m *Manager) Bus() *events.Bus { return m.bus }

// On registers fn for the named event and returns its revocation handle.
func (m *Manager) On(name events.Name, fn func(events.Event)) events.Unsubscribe {
	return m.bus.On(name, fn)
}

func (m *Manager) GameState() state.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.Clone()
}

func (m *Manager) SessionState() state.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

func (m *Manager) CommissionerState() state.CommissionerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commissioner.Clone()
}

func (m *Manager) CurrentGameID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentGameID
}

// UpdateGameState merges p into the game state. The current key loses its
// freshness so the next load goes back to the remote endpoint.
func (m *Manager) UpdateGameState(p state.GamePatch) state.GameState {
	m.mu.Lock()
	prev := m.game
	m.game = state.ApplyGame(m.game, p)
	delete(m.gameFetchedAt, m.currentGameID)
	next := m.game.Clone()
	m.mu.Unlock()

	m.log.Debug("game state updated")
	m.bus.Emit(events.GameStateUpdated{Previous: prev.Clone(), State: next})
	return next
}

func (m *Manager) SetRosterLock(t time.Time) state.GameState {
	next := m.UpdateGameState(state.GamePatch{RosterLockTime: state.Some(&t)})
	m.bus.Emit(events.RosterLocked{LockTime: t, State: next})
	return next
}

// UpdateResults writes results for gameID to the remote endpoint and, once
// that succeeds, merges them locally. On failure nothing changes.
func (m *Manager) UpdateResults(ctx context.Context, gameID string, results map[string]string) error {
	if gameID == "" {
		return ErrEmptyGameID
	}
	if m.cfg.Source == nil {
		return ErrNoSource
	}
	if err := m.cfg.Source.PushResults(ctx, gameID, results); err != nil {
		metrics.RemoteErrors.WithLabelValues("push_results").Inc()
		m.log.Warn("results update failed", zap.String("gameId", gameID), zap.Error(err))
		return err
	}

	m.mu.Lock()
	if gameID == m.currentGameID {
		m.game = state.MergeResults(m.game, results)
	}
	if cached, ok := m.results[gameID]; ok {
		merged := maps.Clone(cached)
		maps.Copy(merged, results)
		m.results[gameID] = merged
	}
	delete(m.resultsFetchAt, gameID)
	m.mu.Unlock()

	m.bus.Emit(events.ResultsUpdated{GameID: gameID, Results: maps.Clone(results)})
	return nil
}

func (m *Manager) InvalidateGameStateCache() {
	m.mu.Lock()
	ids := sortedKeys(m.gameFetchedAt)
	clear(m.gameFetchedAt)
	m.mu.Unlock()

	m.bus.Emit(events.CacheExpired{GameIDs: ids})
}

func (m *Manager) InvalidateResultsCache() {
	m.mu.Lock()
	ids := sortedKeys(m.resultsFetchAt)
	clear(m.resultsFetchAt)
	m.mu.Unlock()

	m.bus.Emit(events.ResultsInvalidated{GameIDs: ids})
}

func sortedKeys(m map[string]time.Time) []string {
	return slices.Sorted(maps.Keys(m))
}
