// Package metrics defines and registers all custom Prometheus metrics for the
// health-records API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors register with the default Prometheus registry on package init,
// which is the registry served by echoprometheus on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "health_records"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// ClientsRegisteredTotal counts newly registered clients.
var ClientsRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_registered_total",
		Help:      "Total number of client records registered.",
	},
)

// ProgramsCreatedTotal counts newly created programs.
var ProgramsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "programs_created_total",
		Help:      "Total number of health programs created.",
	},
)

// EnrollmentChangesTotal counts enrollment mutations.
// Label:
//   - action: "enroll" or "unenroll"
var EnrollmentChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollment_changes_total",
		Help:      "Total number of successful enroll/unenroll operations.",
	},
	[]string{"action"},
)

// ConflictsTotal counts requests rejected by a uniqueness rule.
// Label:
//   - reason: "duplicate_email", "duplicate_program_name", "already_enrolled"
var ConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflicts_total",
		Help:      "Total number of requests rejected by a uniqueness constraint.",
	},
	[]string{"reason"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// ProgramCacheTotal counts program list cache lookups and discarded fills.
// Label:
//   - result: "hit", "miss", "error" or "stale"
var ProgramCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "program_cache_total",
		Help:      "Total number of program list cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "written", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, labelled by outcome.",
	},
	[]string{"result"},
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

// AuditWriteDuration measures how long persisting a single audit event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence from dequeue to acknowledgement.",
		Buckets:   prometheus.DefBuckets,
	},
)
