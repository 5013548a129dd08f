package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// State manager
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_cache_hits_total",
		Help: "Loads served from the in-memory cache without a remote call.",
	}, []string{"cache"})
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_cache_misses_total",
		Help: "Loads that went to the remote endpoint.",
	}, []string{"cache"})
	RemoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_remote_errors_total",
		Help: "Failed calls to the remote endpoint.",
	}, []string{"op"})
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_storage_errors_total",
		Help: "Storage adapter errors absorbed by the state manager.",
	}, []string{"op"})
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draft_events_emitted_total",
		Help: "Events published on the state manager bus.",
	}, []string{"event"})

	// Reference server
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "draft_rooms_active",
		Help: "Game rooms currently held by the hub.",
	})
	ActiveSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "draft_ws_connections_active",
		Help: "Open websocket connections.",
	})
	SnapshotsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "draft_snapshots_broadcast_total",
		Help: "Game snapshots pushed to room clients.",
	})
)

const (
	CacheGameState = "game_state"
	CacheResults   = "results"
)
