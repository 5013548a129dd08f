package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/marathon-draft/internal/state"
)

var ErrCorrupt = errors.New("stored record is corrupt")

// Adapter persists the session-shaped slices of the game state manager.
// Loads report absence as a nil record (or empty id) and a nil error.
type Adapter interface {
	SaveSession(ctx context.Context, s state.SessionState) error
	LoadSession(ctx context.Context) (*state.SessionState, error)
	ClearSession(ctx context.Context) error

	SaveCommissionerSession(ctx context.Context, c state.CommissionerState) error
	LoadCommissionerSession(ctx context.Context) (*state.CommissionerState, error)
	ClearCommissionerSession(ctx context.Context) error

	SaveGameID(ctx context.Context, id string) error
	LoadGameID(ctx context.Context) (string, error)
}

// Backend is a raw key-value store. Get returns nil, nil for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const (
	keyTeamSession         = "team_session"
	keyCommissionerSession = "commissioner_session"
	keyCurrentGameID       = "current_game_id"
)

// KV implements Adapter by storing JSON records in a Backend.
type KV struct {
	backend   Backend
	namespace string
}

var _ Adapter = (*KV)(nil)

func NewKV(backend Backend, namespace string) *KV {
	if namespace == "" {
		namespace = "marathon_fantasy"
	}
	return &KV{backend: backend, namespace: namespace}
}

func (k *KV) key(name string) string {
	return k.namespace + ":" + name
}

func (k *KV) SaveSession(ctx context.Context, s state.SessionState) error {
	return k.save(ctx, keyTeamSession, s)
}

func (k *KV) LoadSession(ctx context.Context) (*state.SessionState, error) {
	var s state.SessionState
	ok, err := k.load(ctx, keyTeamSession, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (k *KV) ClearSession(ctx context.Context) error {
	return k.backend.Delete(ctx, k.key(keyTeamSession))
}

func (k *KV) SaveCommissionerSession(ctx context.Context, c state.CommissionerState) error {
	return k.save(ctx, keyCommissionerSession, c)
}

func (k *KV) LoadCommissionerSession(ctx context.Context) (*state.CommissionerState, error) {
	var c state.CommissionerState
	ok, err := k.load(ctx, keyCommissionerSession, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (k *KV) ClearCommissionerSession(ctx context.Context) error {
	return k.backend.Delete(ctx, k.key(keyCommissionerSession))
}

func (k *KV) SaveGameID(ctx context.Context, id string) error {
	if id == "" {
		return k.backend.Delete(ctx, k.key(keyCurrentGameID))
	}
	return k.backend.Set(ctx, k.key(keyCurrentGameID), []byte(id))
}

func (k *KV) LoadGameID(ctx context.Context) (string, error) {
	data, err := k.backend.Get(ctx, k.key(keyCurrentGameID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (k *KV) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return k.backend.Set(ctx, k.key(name), data)
}

func (k *KV) load(ctx context.Context, name string, v any) (bool, error) {
	data, err := k.backend.Get(ctx, k.key(name))
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return true, nil
}
