package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SnapshotMetrics tracks the periodic snapshot job.
type SnapshotMetrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	purged   prometheus.Counter
}

var (
	snapshotOnce    sync.Once
	snapshotMetrics *SnapshotMetrics
	snapshotConfig  Config
)

// SnapshotWithConfig sets the static labels used when the singleton is built.
func SnapshotWithConfig(cfg Config) {
	snapshotConfig = cfg
}

// Snapshot returns the process-wide snapshot job metrics.
func Snapshot() *SnapshotMetrics {
	snapshotOnce.Do(func() {
		snapshotMetrics = newSnapshotMetrics(snapshotConfig)
	})
	return snapshotMetrics
}

// ResetSnapshotMetricsForTest clears the singleton so tests can re-register
// collectors against a fresh registry.
func ResetSnapshotMetricsForTest() {
	snapshotOnce = sync.Once{}
	snapshotMetrics = nil
}

func newSnapshotMetrics(cfg Config) *SnapshotMetrics {
	constLabels := prometheus.Labels{
		"service": cfg.ServiceName,
		"env":     cfg.Environment,
	}

	return &SnapshotMetrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "facilitypulse_snapshot_runs_total",
			Help:        "Snapshot generation runs by terminal status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "facilitypulse_snapshot_run_duration_seconds",
			Help:        "Snapshot generation run duration.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		purged: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "facilitypulse_snapshot_retention_purged_total",
			Help:        "Snapshot executions deleted by retention.",
			ConstLabels: constLabels,
		}),
	}
}

func (m *SnapshotMetrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

func (m *SnapshotMetrics) ObserveRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

func (m *SnapshotMetrics) AddRetentionPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
