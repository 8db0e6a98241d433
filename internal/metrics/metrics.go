// Package metrics defines the custom Prometheus metrics of the SOS service.
// All metrics are registered with the default registry on import through
// promauto and exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sos"

// ── Alert metrics ─────────────────────────────────────────────────────────────

// AlertsDispatchedTotal counts SOS alerts handed to the SMS provider.
// Label:
//   - result: "sent" or "failed"
var AlertsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_dispatched_total",
		Help:      "Total number of SOS alerts handed to the SMS provider, by result.",
	},
	[]string{"result"},
)

// AlertDispatchDuration measures the SMS provider call.
var AlertDispatchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "alert_dispatch_duration_seconds",
		Help:      "Duration of the SMS provider call for a single alert.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "username_taken", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
