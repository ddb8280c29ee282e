package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Schedule metrics
	SchedulesGenerated  *prometheus.CounterVec
	ScheduleLines       prometheus.Histogram
	OverridesApplied    prometheus.Counter
	ItemsCancelled      prometheus.Counter
	ItemsDeleted        prometheus.Counter
	ItemsRecognised     prometheus.Counter
	InvariantViolations *prometheus.CounterVec

	// Reconciliation metrics
	VarianceChecks *prometheus.CounterVec
	GridBuilds     *prometheus.CounterVec
	GridDuration   prometheus.Histogram

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		SchedulesGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_schedules_generated_total",
				Help: "Total number of schedules generated by spread method",
			},
			[]string{"method"},
		),
		ScheduleLines: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recon_schedule_lines",
			Help:    "Number of lines per generated schedule",
			Buckets: []float64{1, 3, 6, 12, 24, 36, 60, 120},
		}),
		OverridesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recon_overrides_applied_total",
			Help: "Total number of schedule line overrides applied",
		}),
		ItemsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recon_items_cancelled_total",
			Help: "Total number of items cancelled",
		}),
		ItemsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recon_items_deleted_total",
			Help: "Total number of items deleted",
		}),
		ItemsRecognised: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recon_items_recognised_total",
			Help: "Total number of items moved to fully recognised",
		}),
		InvariantViolations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_invariant_violations_total",
				Help: "Schedules that failed invariant checks, by operation",
			},
			[]string{"operation"},
		),

		VarianceChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_variance_checks_total",
				Help: "Total variance checks by tolerance class and outcome",
			},
			[]string{"tolerance", "reconciled"},
		),
		GridBuilds: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_grid_builds_total",
				Help: "Total grid requests by cache outcome",
			},
			[]string{"cache"},
		),
		GridDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "recon_grid_duration_seconds",
			Help:    "Duration of grid projections",
			Buckets: prometheus.DefBuckets,
		}),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_db_errors_total",
				Help: "Retryable database errors by SQLSTATE",
			},
			[]string{"code"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),

		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recon_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action"},
		),
	}
}
