package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruangdengar_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ruangdengar_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruangdengar_sessions_created_total",
			Help: "Total chat sessions created",
		},
		[]string{"session_type"}, // "group" or "companion"
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruangdengar_messages_posted_total",
			Help: "Total chat messages posted",
		},
		[]string{"session_type"},
	)

	RiskAdvisoriesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ruangdengar_risk_advisories_total",
			Help: "Total risk advisories attached to responses",
		},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruangdengar_logins_total",
			Help: "Total login attempts",
		},
		[]string{"outcome"}, // "success" or "failure"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ruangdengar_rate_limit_hits_total",
			Help: "Total rate limit rejections",
		},
		[]string{"class"},
	)
)
