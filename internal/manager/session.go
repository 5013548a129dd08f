package manager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/events"
	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/state"
)

// persist runs a storage write with the configured timeout. Storage errors
// are logged and counted, never returned.
func (m *Manager) persist(op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StorageTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("storage panic: %v", r)
			}
		}()
		return fn(ctx)
	}()
	if err != nil {
		metrics.StorageErrors.WithLabelValues(op).Inc()
		m.log.Warn("storage write failed", zap.String("op", op), zap.Error(err))
	}
}

// load is persist for reads: any failure, panics included, reads as
// nothing stored.
func load[T any](m *Manager, op string, fn func(ctx context.Context) (T, error)) (v T, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StorageTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			metrics.StorageErrors.WithLabelValues(op).Inc()
			m.log.Warn("storage read panicked", zap.String("op", op), zap.Any("panic", r))
			var zero T
			v, ok = zero, false
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		metrics.StorageErrors.WithLabelValues(op).Inc()
		m.log.Warn("storage read failed", zap.String("op", op), zap.Error(err))
		var zero T
		return zero, false
	}
	return v, true
}

// hydrate restores the session slices at construction. Unreadable or expired
// records are cleared from storage so the next start does not see them again.
func (m *Manager) hydrate() {
	now := m.cfg.Now()

	s, ok := load(m, "load_session", m.cfg.Storage.LoadSession)
	switch {
	case !ok:
		m.persist("clear_session", m.cfg.Storage.ClearSession)
	case s == nil:
	case s.Expired(now):
		m.log.Debug("discarding expired team session")
		m.persist("clear_session", m.cfg.Storage.ClearSession)
	default:
		m.session = s.Clone()
	}

	c, ok := load(m, "load_commissioner_session", m.cfg.Storage.LoadCommissionerSession)
	switch {
	case !ok:
		m.persist("clear_commissioner_session", m.cfg.Storage.ClearCommissionerSession)
	case c == nil:
	case c.Expired(now):
		m.log.Debug("discarding expired commissioner session")
		m.persist("clear_commissioner_session", m.cfg.Storage.ClearCommissionerSession)
	default:
		m.commissioner = c.Clone()
	}

	if id, ok := load(m, "load_game_id", m.cfg.Storage.LoadGameID); ok {
		m.currentGameID = id
	}

	m.log.Debug("hydrated",
		zap.Bool("session", m.session.Token != ""),
		zap.Bool("commissioner", m.commissioner.IsCommissioner),
		zap.String("gameId", m.currentGameID))
}

func (m *Manager) UpdateSession(p state.SessionPatch) state.SessionState {
	m.mu.Lock()
	m.session = state.ApplySession(m.session, p)
	next := m.session.Clone()
	m.persist("save_session", func(ctx context.Context) error {
		return m.cfg.Storage.SaveSession(ctx, next)
	})
	m.mu.Unlock()

	m.bus.Emit(events.SessionUpdated{State: next.Clone()})
	return next
}

func (m *Manager) ClearSession() {
	m.mu.Lock()
	m.session = state.SessionState{}
	m.persist("clear_session", m.cfg.Storage.ClearSession)
	m.mu.Unlock()

	m.bus.Emit(events.SessionUpdated{State: state.SessionState{}})
}

// UpdateCommissionerSession merges p into the commissioner session and emits
// commissioner:login when the session becomes active. A login with no login
// time is stamped with the current time.
func (m *Manager) UpdateCommissionerSession(p state.CommissionerPatch) state.CommissionerState {
	now := m.cfg.Now()

	m.mu.Lock()
	wasActive := m.commissioner.Active(now)
	next := state.ApplyCommissioner(m.commissioner, p)
	loggedIn := !wasActive && next.Active(now)
	if loggedIn && next.LoginTime == nil {
		next.LoginTime = &now
	}
	m.commissioner = next
	m.persist("save_commissioner_session", func(ctx context.Context) error {
		return m.cfg.Storage.SaveCommissionerSession(ctx, next)
	})
	m.mu.Unlock()

	if loggedIn {
		m.bus.Emit(events.CommissionerLogin{State: next.Clone()})
	}
	return next.Clone()
}

func (m *Manager) ClearCommissionerSession() {
	m.mu.Lock()
	m.commissioner = state.CommissionerState{}
	m.persist("clear_commissioner_session", m.cfg.Storage.ClearCommissionerSession)
	m.mu.Unlock()

	m.bus.Emit(events.CommissionerLogout{})
}

func (m *Manager) IsSessionActive() bool {
	now := m.cfg.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Active(now)
}

func (m *Manager) IsCommissionerActive() bool {
	now := m.cfg.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commissioner.Active(now)
}

// CheckExpiry clears any slice whose expiry has passed. Expiry is only ever
// detected here or at construction; there is no background timer.
func (m *Manager) CheckExpiry() {
	now := m.cfg.Now()

	m.mu.Lock()
	sessionExpired := m.session.Expired(now)
	if sessionExpired {
		m.session = state.SessionState{}
		m.persist("clear_session", m.cfg.Storage.ClearSession)
	}
	commissionerExpired := m.commissioner.IsCommissioner && m.commissioner.Expired(now)
	if commissionerExpired {
		m.commissioner = state.CommissionerState{}
		m.persist("clear_commissioner_session", m.cfg.Storage.ClearCommissionerSession)
	}
	m.mu.Unlock()

	if sessionExpired {
		m.bus.Emit(events.SessionUpdated{State: state.SessionState{}})
	}
	if commissionerExpired {
		m.bus.Emit(events.CommissionerLogout{})
	}
}
