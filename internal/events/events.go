package events

import (
	"time"

	"github.com/DoyleJ11/marathon-draft/internal/state"
)

// Name is the wire name of an event kind. Existing consumers key on these
// strings, so they must not change.
type Name string

const (
	NameGameStateUpdated   Name = "gameState:updated"
	NameSessionUpdated     Name = "session:updated"
	NameCommissionerLogin  Name = "commissioner:login"
	NameCommissionerLogout Name = "commissioner:logout"
	NameRosterLocked       Name = "roster:locked"
	NameResultsUpdated     Name = "results:updated"
	NameResultsInvalidated Name = "results:invalidated"
	NameCacheExpired       Name = "cache:expired"
)

type Event interface {
	Name() Name
	isEvent()
}

// GameStateUpdated carries the state before and after the change so
// subscribers can diff.
type GameStateUpdated struct {
	Previous state.GameState
	State    state.GameState
}

type SessionUpdated struct {
	State state.SessionState
}

type CommissionerLogin struct {
	State state.CommissionerState
}

type CommissionerLogout struct{}

type RosterLocked struct {
	LockTime time.Time
	State    state.GameState
}

type ResultsUpdated struct {
	GameID  string
	Results map[string]string
}

// ResultsInvalidated and CacheExpired carry the keys whose freshness was
// dropped.
type ResultsInvalidated struct {
	GameIDs []string
}

type CacheExpired struct {
	GameIDs []string
}

func (GameStateUpdated) Name() Name   { return NameGameStateUpdated }
func (SessionUpdated) Name() Name     { return NameSessionUpdated }
func (CommissionerLogin) Name() Name  { return NameCommissionerLogin }
func (CommissionerLogout) Name() Name { return NameCommissionerLogout }
func (RosterLocked) Name() Name       { return NameRosterLocked }
func (ResultsUpdated) Name() Name     { return NameResultsUpdated }
func (ResultsInvalidated) Name() Name { return NameResultsInvalidated }
func (CacheExpired) Name() Name       { return NameCacheExpired }

func (GameStateUpdated) isEvent()   {}
func (SessionUpdated) isEvent()     {}
func (CommissionerLogin) isEvent()  {}
func (CommissionerLogout) isEvent() {}
func (RosterLocked) isEvent()       {}
func (ResultsUpdated) isEvent()     {}
func (ResultsInvalidated) isEvent() {}
func (CacheExpired) isEvent()       {}
