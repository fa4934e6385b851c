// Package obs holds the domain-level Prometheus metrics. It sits outside
// both the core and the API layers so that services can count outcomes
// without importing anything transport-shaped.
//
// Metrics register into the default registry at package init via promauto;
// importing the package is all a caller needs.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "exists", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts refresh-token exchanges.
// Label:
//   - result: "success", "invalid_token", "user_inactive", or "error"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh-token exchanges, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsTerminatedTotal counts sessions moved to terminated.
// Label:
//   - reason: "logout", "token_misuse", "user_inactive", "password_change",
//     "revoke_others", "admin", or "status_change"
var SessionsTerminatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_terminated_total",
		Help:      "Total number of sessions terminated, by reason.",
	},
	[]string{"reason"},
)

// SessionsExpiredTotal counts sessions the cleanup sweep moved to expired.
var SessionsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions transitioned to expired by cleanup.",
	},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// ActivityQueueDepth tracks the number of records waiting in each dispatcher
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts activity records dropped because a worker
// channel was full. Dropped records are lost observability, never an error
// surfaced to the triggering request.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity records dropped due to a full worker queue.",
	},
)
