// Package metrics exposes the Prometheus collectors for the chat pipeline.
// Collectors are registered on the default registry and served via /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatRequests counts chat turns by provider and outcome. Outcome is one
	// of "ok", "cancelled", "timeout", "provider_error", "rejected".
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polychat",
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chat turns by provider and outcome.",
	}, []string{"provider", "outcome"})

	// StreamChunks counts text chunks delivered to clients.
	StreamChunks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polychat",
		Subsystem: "chat",
		Name:      "stream_chunks_total",
		Help:      "Text chunks delivered to clients.",
	}, []string{"provider"})

	// StreamDuration observes wall-clock duration of a chat turn in seconds.
	StreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polychat",
		Subsystem: "chat",
		Name:      "stream_duration_seconds",
		Help:      "Wall-clock duration of a chat turn.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"provider"})
)
