package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/marathon-draft/internal/state"
	"github.com/DoyleJ11/marathon-draft/internal/storage"
)

func TestDefault_ResetRehydrates(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	store := storage.NewMemory()
	clk := newClock()
	m := newTestManager(t, store, newSource(), clk, time.Minute)
	SetDefault(m)
	require.Same(t, m, Default())

	m.UpdateSession(state.SessionPatch{Token: state.Some("tok")})
	m.UpdateGameState(state.GamePatch{DraftComplete: state.Some(true)})

	fresh := ResetDefault()

	assert.NotSame(t, m, fresh)
	assert.Same(t, fresh, Default())
	assert.Equal(t, "tok", fresh.SessionState().Token, "session comes back from storage")
	assert.False(t, fresh.GameState().DraftComplete, "game state starts empty")
}

func TestDefault_LazyInstance(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })

	m := Default()
	require.NotNil(t, m)
	assert.Same(t, m, Default())

	_, err := m.LoadGameState(context.Background(), "g1", false)
	assert.ErrorIs(t, err, ErrNoSource)
}
