package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/marathon-draft/internal/state"
	"github.com/DoyleJ11/marathon-draft/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 2, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSource counts calls and serves canned payloads per game id.
type fakeSource struct {
	mu          sync.Mutex
	games       map[string]state.GamePatch
	results     map[string]map[string]string
	gameCalls   map[string]int
	resultCalls map[string]int
	pushed      map[string]map[string]string
	err         error
	fetchFn     func(ctx context.Context, gameID string) (state.GamePatch, error)
}

func newSource() *fakeSource {
	return &fakeSource{
		games:       map[string]state.GamePatch{},
		results:     map[string]map[string]string{},
		gameCalls:   map[string]int{},
		resultCalls: map[string]int{},
		pushed:      map[string]map[string]string{},
	}
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSource) calls(gameID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gameCalls[gameID]
}

func (f *fakeSource) FetchGameState(ctx context.Context, gameID string) (state.GamePatch, error) {
	f.mu.Lock()
	f.gameCalls[gameID]++
	fn, err, p := f.fetchFn, f.err, f.games[gameID]
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, gameID)
	}
	if err != nil {
		return state.GamePatch{}, err
	}
	return p, nil
}

func (f *fakeSource) FetchResults(ctx context.Context, gameID string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultCalls[gameID]++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]string{}
	for k, v := range f.results[gameID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSource) PushResults(ctx context.Context, gameID string, results map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pushed[gameID] = results
	return nil
}

func (f *fakeSource) PushGameState(ctx context.Context, gameID string, patch state.GamePatch) error {
	return errors.New("not used")
}

func newTestManager(t *testing.T, store storage.Adapter, src *fakeSource, clk *fakeClock, ttl time.Duration) *Manager {
	t.Helper()
	if store == nil {
		store = storage.NewMemory()
	}
	m, err := New(Config{
		Storage:           store,
		Source:            src,
		GameStateCacheTTL: ttl,
		ResultsCacheTTL:   ttl,
		Now:               clk.Now,
	})
	require.NoError(t, err)
	return m
}

// brokenStore fails or panics on every call.
type brokenStore struct {
	panics bool
}

func (b brokenStore) fail() error {
	if b.panics {
		panic("storage exploded")
	}
	return errors.New("storage unavailable")
}

func (b brokenStore) SaveSession(context.Context, state.SessionState) error {
	return b.fail()
}
func (b brokenStore) LoadSession(context.Context) (*state.SessionState, error) {
	return nil, b.fail()
}
func (b brokenStore) ClearSession(context.Context) error {
	return b.fail()
}
func (b brokenStore) SaveCommissionerSession(context.Context, state.CommissionerState) error {
	return b.fail()
}
func (b brokenStore) LoadCommissionerSession(context.Context) (*state.CommissionerState, error) {
	return nil, b.fail()
}
func (b brokenStore) ClearCommissionerSession(context.Context) error {
	return b.fail()
}
func (b brokenStore) SaveGameID(context.Context, string) error {
	return b.fail()
}
func (b brokenStore) LoadGameID(context.Context) (string, error) {
	return "", b.fail()
}
