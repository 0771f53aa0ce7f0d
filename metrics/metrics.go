// Package metrics Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 命令通道指标
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jdl_commands_total",
			Help: "Total number of handled commands",
		},
		[]string{"event", "status"}, // status: ok, invalid, error
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jdl_command_duration_seconds",
			Help:    "Command handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jdl_websocket_connections",
			Help: "Number of open WebSocket connections",
		},
	)
)

// 文件夹/歌单指标
var (
	FolderDetailsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jdl_folder_details_duration_seconds",
			Help:    "Time spent walking and probing a folder subtree",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	PlaylistWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jdl_playlist_write_conflicts_total",
			Help: "Playlist content writes that lost a version race and were re-applied",
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jdl_cache_requests_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"}, // result: hit, miss, error
	)
)

// Command status labels
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)
