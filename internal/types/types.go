package types

import "github.com/DoyleJ11/marathon-draft/internal/state"

type ClientMessage struct {
	Type    string            `json:"type"` // "UpdateGameState" | "UpdateResults"
	Patch   *state.GamePatch  `json:"patch,omitempty"`
	Results map[string]string `json:"results,omitempty"`
}

type ServerMessage struct {
	Type    string           `json:"type"` // "StateSnapshot" | "Error"
	Version int              `json:"version,omitempty"`
	State   *state.GameState `json:"state,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ResultsBody is the JSON body of the results resource.
type ResultsBody struct {
	Results map[string]string `json:"results"`
}

type CreateGameResponse struct {
	GameID string `json:"gameId"`
}
