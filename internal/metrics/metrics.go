// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showcase_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showcase_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// TogglesTotal counts flag toggles by collection, field and outcome.
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showcase_toggles_total",
			Help: "Total number of flag toggles",
		},
		[]string{"collection", "field", "status"},
	)
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showcase_uploads_total",
			Help: "Uploaded files by field and outcome",
		},
		[]string{"field", "status"},
	)
	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showcase_live_events_total",
			Help: "Live events published by name and outcome",
		},
		[]string{"event", "status"},
	)
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showcase_live_clients",
			Help: "Connected live websocket clients",
		},
	)
	StatusSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showcase_status_sweep_promotions_total",
			Help: "Projects promoted by the status sweeper",
		},
		[]string{"status"},
	)
)

// Outcome labels err as "ok" or "error".
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
