// Package metrics defines the Prometheus metrics for the quorum store. It is
// the single source of truth for metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quorum"

// OperationsTotal counts facade operations.
// Labels:
//   - op: facade operation name (e.g. "send_group_message")
//   - outcome: "ok", "denied", or "save_failed"
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of facade operations, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// SnapshotSavesTotal counts snapshot save attempts.
// Label:
//   - result: "ok" or "error"
var SnapshotSavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_saves_total",
		Help:      "Total number of snapshot saves, by result.",
	},
	[]string{"result"},
)

// SnapshotReloadsTotal counts wholesale reloads triggered by an advanced
// modification time on the snapshot file.
var SnapshotReloadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_reloads_total",
		Help:      "Total number of reloads caused by external snapshot changes.",
	},
)
