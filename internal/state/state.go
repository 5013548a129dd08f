package state

import (
	"maps"
	"slices"
	"time"
)

type Roster struct {
	Men   []int `json:"men"`
	Women []int `json:"women"`
}

// GameState is the shared state of one game instance.
type GameState struct {
	Players          []string          `json:"players"`
	DraftComplete    bool              `json:"draftComplete"`
	ResultsFinalized bool              `json:"resultsFinalized"`
	RosterLockTime   *time.Time        `json:"rosterLockTime"`
	Rankings         map[string][]int  `json:"rankings"`
	Teams            map[string]Roster `json:"teams"`
	Results          map[string]string `json:"results"`
}

// SessionState is the current user's team session. Empty strings are unset.
type SessionState struct {
	Token      string     `json:"token,omitempty"`
	TeamName   string     `json:"teamName,omitempty"`
	PlayerCode string     `json:"playerCode,omitempty"`
	OwnerName  string     `json:"ownerName,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

type CommissionerState struct {
	IsCommissioner bool       `json:"isCommissioner"`
	LoginTime      *time.Time `json:"loginTime"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

func NewGameState() GameState {
	return GameState{
		Players:  []string{},
		Rankings: map[string][]int{},
		Teams:    map[string]Roster{},
		Results:  map[string]string{},
	}
}

func (g GameState) Clone() GameState {
	out := g
	out.Players = slices.Clone(g.Players)
	out.RosterLockTime = cloneTime(g.RosterLockTime)
	out.Results = maps.Clone(g.Results)
	if g.Rankings != nil {
		out.Rankings = make(map[string][]int, len(g.Rankings))
		for code, ids := range g.Rankings {
			out.Rankings[code] = slices.Clone(ids)
		}
	}
	if g.Teams != nil {
		out.Teams = make(map[string]Roster, len(g.Teams))
		for code, r := range g.Teams {
			out.Teams[code] = Roster{Men: slices.Clone(r.Men), Women: slices.Clone(r.Women)}
		}
	}
	return out
}

func (s SessionState) Clone() SessionState {
	s.ExpiresAt = cloneTime(s.ExpiresAt)
	return s
}

func (s SessionState) IsEmpty() bool {
	return s.Token == "" && s.TeamName == "" && s.PlayerCode == "" && s.OwnerName == "" && s.ExpiresAt == nil
}

// Expired reports whether the session carries an expiry that is not after now.
func (s SessionState) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Active reports a present token with no expiry or an expiry in the future.
func (s SessionState) Active(now time.Time) bool {
	return s.Token != "" && !s.Expired(now)
}

func (c CommissionerState) Clone() CommissionerState {
	c.LoginTime = cloneTime(c.LoginTime)
	c.ExpiresAt = cloneTime(c.ExpiresAt)
	return c
}

func (c CommissionerState) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

func (c CommissionerState) Active(now time.Time) bool {
	return c.IsCommissioner && !c.Expired(now)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
