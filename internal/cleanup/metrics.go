package cleanup

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus counters for the scheduled cleanup jobs.
type Metrics struct {
	OrphansDeleted   prometheus.Counter
	DeleteFailures   prometheus.Counter
	UnverifiedPurged prometheus.Counter
	CycleFailures    *prometheus.CounterVec
}

// NewMetrics creates the cleanup metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		OrphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_orphan_files_deleted_total",
			Help: "Total number of orphaned files deleted by the reclamation job.",
		}),
		DeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_file_delete_failures_total",
			Help: "Total number of file deletions that failed during cleanup.",
		}),
		UnverifiedPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cleanup_unverified_users_purged_total",
			Help: "Total number of stale unverified user accounts removed.",
		}),
		CycleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanup_cycle_failures_total",
			Help: "Total number of cleanup cycles that ended with an error.",
		}, []string{"job"}),
	}

	collectors := []prometheus.Collector{
		m.OrphansDeleted,
		m.DeleteFailures,
		m.UnverifiedPurged,
		m.CycleFailures,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
