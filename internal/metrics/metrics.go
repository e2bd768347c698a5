// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit write results.
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
)

// Dead-letter queue results.
const (
	DeadLetterQueued   = "queued"
	DeadLetterFailed   = "failed"
	DeadLetterReplayed = "replayed"
)

// Audit trail
var (
	// AuditWritesTotal counts audit writes by action and outcome. A non-zero
	// failed or rejected series means the trail has gaps.
	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_audit_writes_total",
			Help: "Audit entries written, by action and result (ok, failed, rejected).",
		},
		[]string{"action", "result"},
	)

	// AuditDeadLettersTotal counts dead-letter queue operations.
	AuditDeadLettersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_audit_dead_letters_total",
			Help: "Audit dead-letter queue operations, by result (queued, failed, replayed).",
		},
		[]string{"result"},
	)
)

// Access control
var (
	AuthRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_rejections_total",
			Help: "Requests rejected by the authentication gate, by reason code.",
		},
		[]string{"reason"},
	)

	AuthzDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_authz_denials_total",
			Help: "Requests rejected by the role gate, by route.",
		},
		[]string{"route"},
	)
)

// HTTP
var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route template and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
