// Package metrics defines and registers all custom Prometheus metrics for
// the parcel tracker. It is the single source of truth for metric names,
// labels, and help strings; metrics register with the default registry at
// package load via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parceltrack"

// ── Refresh metrics ───────────────────────────────────────────────────────────

// RefreshesTotal counts single-parcel refresh attempts.
// Label:
//   - result: "success", "pending", or the failure kind (e.g. "transport")
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of single-parcel refresh attempts, by result.",
	},
	[]string{"result"},
)

// RefreshDuration measures how long one parcel's refresh takes end-to-end,
// including uuid resolution and any session-expiry retry.
var RefreshDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Duration of a single-parcel refresh.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ParcelsTracked tracks the current number of parcels in the registry.
var ParcelsTracked = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "parcels_tracked",
		Help:      "Current number of tracked parcels.",
	},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls against the parcelsapp API.
// Labels:
//   - op: "track" or "fetch_status"
//   - outcome: "ok" or the failure kind (e.g. "session_expired")
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream API calls, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// UUIDCacheTotal counts session-uuid cache lookups.
// Label:
//   - result: "hit" or "miss"
var UUIDCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uuid_cache_total",
		Help:      "Total number of session uuid cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)
