package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyGame_CumulativeShallowMerge(t *testing.T) {
	lock := time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)
	patches := []GamePatch{
		{Players: Some([]string{"RUNNER", "SPRINTER"})},
		{DraftComplete: Some(true)},
		{Rankings: Some(map[string][]int{"RUNNER": {1, 2}})},
		{RosterLockTime: Some(&lock)},
		{Players: Some([]string{"PACER"}), DraftComplete: Some(false)},
	}

	got := NewGameState()
	for _, p := range patches {
		got = ApplyGame(got, p)
	}

	assert.Equal(t, []string{"PACER"}, got.Players)
	assert.False(t, got.DraftComplete)
	assert.Equal(t, map[string][]int{"RUNNER": {1, 2}}, got.Rankings)
	require.NotNil(t, got.RosterLockTime)
	assert.True(t, lock.Equal(*got.RosterLockTime))
	assert.Empty(t, got.Results)
}

func TestApplyGame_DoesNotAliasInput(t *testing.T) {
	base := NewGameState()
	base.Results["101"] = "2:05:30"

	next := ApplyGame(base, GamePatch{DraftComplete: Some(true)})
	next.Results["101"] = "changed"
	next.Players = append(next.Players, "X")

	assert.Equal(t, "2:05:30", base.Results["101"])
	assert.Empty(t, base.Players)
	assert.False(t, base.DraftComplete)
}

func TestApplyGame_NullClearsNullableField(t *testing.T) {
	lock := time.Now()
	s := GameState{RosterLockTime: &lock}

	var p GamePatch
	require.NoError(t, json.Unmarshal([]byte(`{"rosterLockTime":null}`), &p))
	require.True(t, p.RosterLockTime.Set)

	assert.Nil(t, ApplyGame(s, p).RosterLockTime)
}

func TestGamePatch_JSONPresence(t *testing.T) {
	var p GamePatch
	require.NoError(t, json.Unmarshal([]byte(`{"draftComplete":true,"results":{"7":"2:10:00"}}`), &p))

	assert.True(t, p.DraftComplete.Set)
	assert.True(t, p.Results.Set)
	assert.False(t, p.Players.Set)
	assert.False(t, p.Teams.Set)

	out, err := json.Marshal(GamePatch{ResultsFinalized: Some(false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"resultsFinalized":false}`, string(out))
}

func TestSessionAndCommissioner_Expiry(t *testing.T) {
	now := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name   string
		state  CommissionerState
		active bool
	}{
		{name: "empty", state: CommissionerState{}, active: false},
		{name: "no expiry", state: CommissionerState{IsCommissioner: true}, active: true},
		{name: "future expiry", state: CommissionerState{IsCommissioner: true, ExpiresAt: &future}, active: true},
		{name: "expired", state: CommissionerState{IsCommissioner: true, ExpiresAt: &past}, active: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.active, tc.state.Active(now))
		})
	}

	s := ApplySession(SessionState{}, SessionPatch{Token: Some("tok"), ExpiresAt: Some(&past)})
	assert.True(t, s.Expired(now))
	assert.False(t, s.Active(now))
	assert.True(t, ApplySession(SessionState{Token: "tok"}, SessionPatch{Token: Some("")}).IsEmpty())
}

func TestMergeResults(t *testing.T) {
	s := NewGameState()
	s.Results["1"] = "2:04:00"

	next := MergeResults(s, map[string]string{"2": "2:06:00", "1": "2:03:59"})

	assert.Equal(t, map[string]string{"1": "2:03:59", "2": "2:06:00"}, next.Results)
	assert.Equal(t, "2:04:00", s.Results["1"])
}
