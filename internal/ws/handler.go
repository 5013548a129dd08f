package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/gameroom"
	"github.com/DoyleJ11/marathon-draft/internal/hub"
	"github.com/DoyleJ11/marathon-draft/internal/metrics"
	"github.com/DoyleJ11/marathon-draft/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameId")
		if gameID == "" {
			http.Error(w, "missing gameId", http.StatusBadRequest)
			return
		}

		room, err := h.Get(r.Context(), gameID)
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		if room == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		metrics.ActiveSockets.Inc()
		defer metrics.ActiveSockets.Dec()

		out := make(chan gameroom.Snapshot, 8)
		clientID := uuid.NewString()
		log := log.With(zap.String("gameId", gameID), zap.String("clientId", clientID))
		log.Debug("websocket joined")

		room.Inbox() <- gameroom.Join{ClientID: clientID, Outbox: out}
		defer func() {
			select {
			case room.Inbox() <- gameroom.Leave{ClientID: clientID}:
			case <-room.Done():
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &snap.State}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// Room closed our outbox (shutdown or slow client).
			conn.Close(websocket.StatusGoingAway, "room closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("websocket closed")
				default:
					log.Debug("websocket read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			msg, ok := toRoomMsg(cm)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}

			select {
			case room.Inbox() <- msg:
			case <-room.Done():
				return
			}
		}
	}
}

func toRoomMsg(m types.ClientMessage) (gameroom.Msg, bool) {
	switch m.Type {
	case "UpdateGameState":
		if m.Patch == nil {
			return nil, false
		}
		return gameroom.ApplyPatch{Patch: *m.Patch}, true
	case "UpdateResults":
		if len(m.Results) == 0 {
			return nil, false
		}
		return gameroom.PutResults{Results: m.Results}, true
	default:
		return nil, false
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
