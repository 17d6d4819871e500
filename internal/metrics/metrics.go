// Package metrics defines the custom Prometheus metrics of the user service.
// It is the single source of truth for metric names, labels and help strings.
//
// All metrics register with the default registry on package init via promauto;
// HTTP request metrics come from the echoprometheus middleware instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usersvc"

// ── User lifecycle ────────────────────────────────────────────────────────────

// UsersCreatedTotal counts users persisted by CreateUser (replays excluded).
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// UsersUpdatedTotal counts successful UpdateUser calls.
var UsersUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_updated_total",
		Help:      "Total number of users updated.",
	},
)

// UsersDeletedTotal counts permanent deletions.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of users deleted.",
	},
)

// UserConflictsTotal counts rejected writes caused by a duplicate unique key.
// Label:
//   - field: "username" or "email"
var UserConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_conflicts_total",
		Help:      "Total number of writes rejected for a duplicate username or email.",
	},
	[]string{"field"},
)

// IdempotentReplaysTotal counts create requests answered from a recorded Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests replayed from an Idempotency-Key.",
	},
)

// ── Authentication ────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential checks.
// Labels:
//   - scheme: "login", "basic" or "bearer"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by scheme and result.",
	},
	[]string{"scheme", "result"},
)
