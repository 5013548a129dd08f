package manager

import (
	"context"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/events"
	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/state"
)

// fresh reports whether key was fetched less than ttl ago. Callers hold m.mu.
func (m *Manager) fresh(fetched map[string]time.Time, key string, ttl time.Duration) bool {
	at, ok := fetched[key]
	return ok && m.cfg.Now().Sub(at) < ttl
}

// LoadGameState returns the game state for gameID, going to the remote
// endpoint only when forceRefresh is set or the key is outside its freshness
// window.
//
// Concurrent loads for the same key are not coalesced. Each successful fetch
// is stamped when it completes and the last one to complete wins.
func (m *Manager) LoadGameState(ctx context.Context, gameID string, forceRefresh bool) (state.GameState, error) {
	if gameID == "" {
		return state.GameState{}, ErrEmptyGameID
	}

	m.mu.Lock()
	if !forceRefresh && gameID == m.currentGameID && m.fresh(m.gameFetchedAt, gameID, m.cfg.GameStateCacheTTL) {
		snap := m.game.Clone()
		m.mu.Unlock()
		metrics.CacheHits.WithLabelValues(metrics.CacheGameState).Inc()
		m.log.Debug("game state served from cache", zap.String("gameId", gameID))
		return snap, nil
	}
	m.mu.Unlock()

	metrics.CacheMisses.WithLabelValues(metrics.CacheGameState).Inc()
	if m.cfg.Source == nil {
		return state.GameState{}, ErrNoSource
	}

	patch, err := m.cfg.Source.FetchGameState(ctx, gameID)
	if err != nil {
		metrics.RemoteErrors.WithLabelValues("fetch_game_state").Inc()
		m.log.Warn("game state fetch failed", zap.String("gameId", gameID), zap.Error(err))
		return state.GameState{}, fmt.Errorf("load game state %q: %w", gameID, err)
	}

	m.mu.Lock()
	prev := m.game
	base := m.game
	switched := gameID != m.currentGameID
	if switched {
		// Another game's fields must not leak into this one.
		delete(m.gameFetchedAt, m.currentGameID)
		base = state.NewGameState()
		m.currentGameID = gameID
		m.persist("save_game_id", func(ctx context.Context) error {
			return m.cfg.Storage.SaveGameID(ctx, gameID)
		})
	}
	m.game = state.ApplyGame(base, patch)
	m.gameFetchedAt[gameID] = m.cfg.Now()
	next := m.game.Clone()
	m.mu.Unlock()

	m.log.Debug("game state fetched", zap.String("gameId", gameID), zap.Bool("switched", switched))
	m.bus.Emit(events.GameStateUpdated{Previous: prev.Clone(), State: next})
	return next, nil
}

// LoadResults returns the results for gameID with the same freshness rules
// as LoadGameState, using the results TTL. When gameID is the current game
// the fetched results also replace GameState.Results.
func (m *Manager) LoadResults(ctx context.Context, gameID string, forceRefresh bool) (map[string]string, error) {
	if gameID == "" {
		return nil, ErrEmptyGameID
	}

	m.mu.Lock()
	if cached, ok := m.results[gameID]; ok && !forceRefresh && m.fresh(m.resultsFetchAt, gameID, m.cfg.ResultsCacheTTL) {
		out := maps.Clone(cached)
		m.mu.Unlock()
		metrics.CacheHits.WithLabelValues(metrics.CacheResults).Inc()
		return out, nil
	}
	m.mu.Unlock()

	metrics.CacheMisses.WithLabelValues(metrics.CacheResults).Inc()
	if m.cfg.Source == nil {
		return nil, ErrNoSource
	}

	results, err := m.cfg.Source.FetchResults(ctx, gameID)
	if err != nil {
		metrics.RemoteErrors.WithLabelValues("fetch_results").Inc()
		m.log.Warn("results fetch failed", zap.String("gameId", gameID), zap.Error(err))
		return nil, fmt.Errorf("load results %q: %w", gameID, err)
	}
	if results == nil {
		results = map[string]string{}
	}

	m.mu.Lock()
	m.results[gameID] = maps.Clone(results)
	m.resultsFetchAt[gameID] = m.cfg.Now()
	if gameID == m.currentGameID {
		m.game = state.ApplyGame(m.game, state.GamePatch{Results: state.Some(results)})
	}
	m.mu.Unlock()

	m.bus.Emit(events.ResultsUpdated{GameID: gameID, Results: maps.Clone(results)})
	return maps.Clone(results), nil
}
