package state

import (
	"encoding/json"
	"time"
)

// Opt is a field of a partial record. An unset Opt leaves the target field
// untouched; a set Opt overwrites it, including with the zero value.
type Opt[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

func (o Opt[T]) IsZero() bool { return !o.Set }

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// UnmarshalJSON is only invoked for keys present in the payload, so a JSON
// null still counts as set.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	var v T
	if string(data) != "null" {
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
	}
	o.Value = v
	o.Set = true
	return nil
}

func (o Opt[T]) apply(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

type GamePatch struct {
	Players          Opt[[]string]          `json:"players,omitzero"`
	DraftComplete    Opt[bool]              `json:"draftComplete,omitzero"`
	ResultsFinalized Opt[bool]              `json:"resultsFinalized,omitzero"`
	RosterLockTime   Opt[*time.Time]        `json:"rosterLockTime,omitzero"`
	Rankings         Opt[map[string][]int]  `json:"rankings,omitzero"`
	Teams            Opt[map[string]Roster] `json:"teams,omitzero"`
	Results          Opt[map[string]string] `json:"results,omitzero"`
}

func (p GamePatch) IsEmpty() bool {
	return !p.Players.Set && !p.DraftComplete.Set && !p.ResultsFinalized.Set &&
		!p.RosterLockTime.Set && !p.Rankings.Set && !p.Teams.Set && !p.Results.Set
}

type SessionPatch struct {
	Token      Opt[string]     `json:"token,omitzero"`
	TeamName   Opt[string]     `json:"teamName,omitzero"`
	PlayerCode Opt[string]     `json:"playerCode,omitzero"`
	OwnerName  Opt[string]     `json:"ownerName,omitzero"`
	ExpiresAt  Opt[*time.Time] `json:"expiresAt,omitzero"`
}

type CommissionerPatch struct {
	IsCommissioner Opt[bool]       `json:"isCommissioner,omitzero"`
	LoginTime      Opt[*time.Time] `json:"loginTime,omitzero"`
	ExpiresAt      Opt[*time.Time] `json:"expiresAt,omitzero"`
}

// FullGamePatch returns a patch that sets every field of g.
func FullGamePatch(g GameState) GamePatch {
	return GamePatch{
		Players:          Some(g.Players),
		DraftComplete:    Some(g.DraftComplete),
		ResultsFinalized: Some(g.ResultsFinalized),
		RosterLockTime:   Some(g.RosterLockTime),
		Rankings:         Some(g.Rankings),
		Teams:            Some(g.Teams),
		Results:          Some(g.Results),
	}
}
