// Package metrics defines and registers the custom Prometheus metrics of the
// storefront service. It is the single source of truth for metric names,
// labels and help strings.
//
// All metrics are registered with the default registry through promauto, so
// importing the package is enough; the HTTP request metrics and the /metrics
// endpoint come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts gate decisions.
// Labels:
//   - class: "public", "login" or "protected"
//   - outcome: "allowed", "unauthorized" or "errored"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of edge gate decisions, by route class and outcome.",
	},
	[]string{"class", "outcome"},
)

// SessionCacheTotal counts admin session cache lookups on protected paths.
// Label:
//   - result: "hit" (cookie honoured) or "miss" (revalidated)
var SessionCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_cache_total",
		Help:      "Total number of admin session cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// AuthorizeDuration measures how long authorization takes on protected paths.
// Label:
//   - result: "hit", "miss" or "errored"
var AuthorizeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gate_authorize_duration_seconds",
		Help:      "Duration of admin authorization, including identity and admin record lookups.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts admin login attempts.
// Label:
//   - result: "succeeded", "failed" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of admin login attempts, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events handled by the workers.
// Labels:
//   - kind: audit event kind (e.g. "gate_denied")
//   - result: "persisted" or "error"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events processed, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AuditEventsDroppedTotal counts audit events dropped because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
