package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/marathon-draft/internal/hub"
	"github.com/DoyleJ11/marathon-draft/internal/manager"
	"github.com/DoyleJ11/marathon-draft/internal/remote"
	"github.com/DoyleJ11/marathon-draft/internal/state"
	"github.com/DoyleJ11/marathon-draft/internal/storage"
	"github.com/DoyleJ11/marathon-draft/internal/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx)
	srv := httptest.NewServer(SetupRoutes(h, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func createGame(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/games", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body types.CreateGameResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.GameID, 6)
	return body.GameID
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGameState_MissingAndUnknown(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/game-state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/game-state?gameId=NOPE")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGameState_PostThenGet(t *testing.T) {
	srv := newServer(t)
	id := createGame(t, srv)

	body := `{"players":["p1","p2"],"draftComplete":true}`
	resp, err := http.Post(srv.URL+"/api/game-state?gameId="+id, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/game-state?gameId=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gs state.GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gs))
	assert.Equal(t, []string{"p1", "p2"}, gs.Players)
	assert.True(t, gs.DraftComplete)
	assert.False(t, gs.ResultsFinalized)
}

func TestGameState_BadJSON(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Post(srv.URL+"/api/game-state?gameId=G1", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResults_PostMergesAndGet(t *testing.T) {
	srv := newServer(t)
	id := createGame(t, srv)

	post := func(results map[string]string) int {
		payload, _ := json.Marshal(types.ResultsBody{Results: results})
		resp, err := http.Post(srv.URL+"/api/results?gameId="+id, "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	require.Equal(t, http.StatusOK, post(map[string]string{"101": "2:05:11"}))
	require.Equal(t, http.StatusOK, post(map[string]string{"102": "2:06:40"}))
	assert.Equal(t, http.StatusBadRequest, post(map[string]string{}))

	resp, err := http.Get(srv.URL + "/api/results?gameId=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got types.ResultsBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]string{"101": "2:05:11", "102": "2:06:40"}, got.Results)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)
	createGame(t, srv)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "draft_rooms_active")
}

func TestManagerAgainstServer(t *testing.T) {
	srv := newServer(t)
	id := createGame(t, srv)
	ctx := context.Background()

	src := remote.NewHTTPClient(srv.URL, srv.Client(), 0)
	require.NoError(t, src.PushGameState(ctx, id, state.GamePatch{
		Players:       state.Some([]string{"a", "b"}),
		DraftComplete: state.Some(true),
	}))

	m, err := manager.New(manager.Config{Storage: storage.NewMemory(), Source: src})
	require.NoError(t, err)

	gs, err := m.LoadGameState(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, gs.Players)
	assert.True(t, gs.DraftComplete)
	assert.Equal(t, id, m.CurrentGameID())

	require.NoError(t, m.UpdateResults(ctx, id, map[string]string{"7": "2:10:00"}))
	res, err := m.LoadResults(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, "2:10:00", res["7"])

	_, err = m.LoadGameState(ctx, "", false)
	assert.ErrorIs(t, err, manager.ErrEmptyGameID)

	_, err = m.LoadResults(ctx, "UNKNOWN", true)
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestWebSocket_SnapshotOnJoinAndUpdate(t *testing.T) {
	srv := newServer(t)
	id := createGame(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?gameId=" + id
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	read := func() types.ServerMessage {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg types.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	assert.Equal(t, "StateSnapshot", first.Type)
	assert.Equal(t, 0, first.Version)

	payload, _ := json.Marshal(types.ClientMessage{
		Type:    "UpdateResults",
		Results: map[string]string{"9": "2:20:00"},
	})
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))

	next := read()
	assert.Equal(t, 1, next.Version)
	require.NotNil(t, next.State)
	assert.Equal(t, "2:20:00", next.State.Results["9"])

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Nope"}`)))
	bad := read()
	assert.Equal(t, "Error", bad.Type)
	assert.Equal(t, "unknown type", bad.Error)
}

func TestWebSocket_UnknownGame(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/ws?gameId=NOPE")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
