// Package types holds the JSON shapes exchanged with the reference server.
//
// Client -> Server (websocket)
//
//	UpdateGameState:
//	  patch: partial GameState, only present keys are applied
//
//	UpdateResults:
//	  results: { [runnerId]: finishTime }
//
// Server -> Client (websocket)
//
//	StateSnapshot:
//	  version: number, bumped on every accepted change
//	  state: full GameState
//
//	Error:
//	  error: string
//
// HTTP
//
//	POST /api/games             -> { gameId }
//	GET  /api/game-state?gameId -> GameState
//	POST /api/game-state?gameId <- partial GameState -> GameState
//	GET  /api/results?gameId    -> { results }
//	POST /api/results?gameId    <- { results } -> { results }
package types
