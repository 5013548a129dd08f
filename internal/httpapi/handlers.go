package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/gameroom"
	"github.com/DoyleJ11/marathon-draft/internal/hub"
	"github.com/DoyleJ11/marathon-draft/internal/state"
	"github.com/DoyleJ11/marathon-draft/internal/types"
)

// maxBodyBytes bounds request bodies; results for a full field fit easily.
const maxBodyBytes = 1 << 20

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			existing, err := h.Get(r.Context(), c)
			if err != nil {
				http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
				return
			}
			if existing == nil {
				code = c
				break
			}
			log.Debug("collision on game code, regenerating", zap.String("code", c))
		}

		if _, err := h.Ensure(r.Context(), code); err != nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, types.CreateGameResponse{GameID: code})
	}
}

func GetGameState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := lookupRoom(w, r, h)
		if !ok {
			return
		}
		view, err := room.View(r.Context())
		if err != nil {
			roomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view.State)
	}
}

// PostGameState merges a partial game state, creating the game if needed.
func PostGameState(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := requireGameID(w, r)
		if !ok {
			return
		}
		var patch state.GamePatch
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		room, err := h.Ensure(r.Context(), gameID)
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		snap, err := room.Apply(r.Context(), patch)
		if err != nil {
			roomError(w, err)
			return
		}
		log.Debug("game state patched", zap.String("gameId", gameID), zap.Int("version", snap.Version))
		writeJSON(w, http.StatusOK, snap.State)
	}
}

func GetResults(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := lookupRoom(w, r, h)
		if !ok {
			return
		}
		view, err := room.View(r.Context())
		if err != nil {
			roomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.ResultsBody{Results: view.State.Results})
	}
}

func PostResults(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := requireGameID(w, r)
		if !ok {
			return
		}
		var body types.ResultsBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(body.Results) == 0 {
			http.Error(w, "results must not be empty", http.StatusBadRequest)
			return
		}

		room, err := h.Ensure(r.Context(), gameID)
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		snap, err := room.AddResults(r.Context(), body.Results)
		if err != nil {
			roomError(w, err)
			return
		}
		log.Debug("results stored", zap.String("gameId", gameID), zap.Int("count", len(body.Results)))
		writeJSON(w, http.StatusOK, types.ResultsBody{Results: snap.State.Results})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func requireGameID(w http.ResponseWriter, r *http.Request) (string, bool) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return "", false
	}
	return gameID, true
}

func lookupRoom(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*gameroom.Room, bool) {
	gameID, ok := requireGameID(w, r)
	if !ok {
		return nil, false
	}
	room, err := h.Get(r.Context(), gameID)
	if err != nil {
		http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	if room == nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	return room, true
}

func roomError(w http.ResponseWriter, err error) {
	if errors.Is(err, gameroom.ErrClosed) {
		http.Error(w, "game closed", http.StatusGone)
		return
	}
	http.Error(w, "request cancelled", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
