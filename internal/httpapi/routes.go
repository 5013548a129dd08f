package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/marathon-draft/internal/hub"
	"github.com/DoyleJ11/marathon-draft/internal/remote"
	"github.com/DoyleJ11/marathon-draft/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/api/games", CreateGame(h, log))
	r.Get(remote.GameStatePath, GetGameState(h))
	r.Post(remote.GameStatePath, PostGameState(h, log))
	r.Get(remote.ResultsPath, GetResults(h))
	r.Post(remote.ResultsPath, PostResults(h, log))
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(h, log))
	return r
}
