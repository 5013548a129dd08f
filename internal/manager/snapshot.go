package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/marathon-draft/internal/events"
	"github.com/DoyleJ11/marathon-draft/internal/state"
)

const SnapshotVersion = 1

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type Snapshot struct {
	Version           int                      `json:"version"`
	GameState         state.GameState          `json:"gameState"`
	SessionState      state.SessionState       `json:"sessionState"`
	CommissionerState *state.CommissionerState `json:"commissionerState,omitempty"`
	GameID            string                   `json:"gameId,omitempty"`
}

func (m *Manager) ExportState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.commissioner.Clone()
	return Snapshot{
		Version:           SnapshotVersion,
		GameState:         m.game.Clone(),
		SessionState:      m.session.Clone(),
		CommissionerState: &c,
		GameID:            m.currentGameID,
	}
}

// ImportState replaces the in-memory slices with those in snap without
// touching the remote endpoint. Session slices are persisted and every
// freshness window is dropped, since imported data has no fetch time.
func (m *Manager) ImportState(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	now := m.cfg.Now()

	m.mu.Lock()
	prev := m.game
	m.game = snap.GameState.Clone()
	m.session = snap.SessionState.Clone()
	session := m.session.Clone()
	if session.IsEmpty() {
		m.persist("clear_session", m.cfg.Storage.ClearSession)
	} else {
		m.persist("save_session", func(ctx context.Context) error {
			return m.cfg.Storage.SaveSession(ctx, session)
		})
	}

	loggedIn := false
	if snap.CommissionerState != nil {
		wasActive := m.commissioner.Active(now)
		c := snap.CommissionerState.Clone()
		if c.Expired(now) {
			c = state.CommissionerState{}
		}
		m.commissioner = c
		if c.IsCommissioner {
			m.persist("save_commissioner_session", func(ctx context.Context) error {
				return m.cfg.Storage.SaveCommissionerSession(ctx, c)
			})
		} else {
			m.persist("clear_commissioner_session", m.cfg.Storage.ClearCommissionerSession)
		}
		loggedIn = !wasActive && c.Active(now)
	}

	if snap.GameID != "" && snap.GameID != m.currentGameID {
		m.currentGameID = snap.GameID
		m.persist("save_game_id", func(ctx context.Context) error {
			return m.cfg.Storage.SaveGameID(ctx, snap.GameID)
		})
	}
	clear(m.gameFetchedAt)
	clear(m.resultsFetchAt)

	next := m.game.Clone()
	commissioner := m.commissioner.Clone()
	m.mu.Unlock()

	m.bus.Emit(events.GameStateUpdated{Previous: prev.Clone(), State: next})
	m.bus.Emit(events.SessionUpdated{State: session})
	if loggedIn {
		m.bus.Emit(events.CommissionerLogin{State: commissioner})
	}
	return nil
}
