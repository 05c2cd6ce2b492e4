package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TasksInFlight is the number of currently-pending task instances, per
	// agent.
	TasksInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleetbot_tasks_in_flight",
		Help: "Number of task instances currently pending, per agent.",
	}, []string{"agent"})

	// TaskOutcomesTotal counts task completions, per agent and outcome
	// (resolved, failed, cancelled, panicked).
	TaskOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetbot_task_outcomes_total",
		Help: "Total task completions, labeled by agent and outcome.",
	}, []string{"agent", "outcome"})

	// TaskRunDuration observes how long a task closure ran, per agent.
	TaskRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleetbot_task_run_duration_seconds",
		Help:    "Duration of a single task closure invocation, per agent.",
		Buckets: prometheus.DefBuckets,
	}, []string{"agent"})

	// RetryDelaySeconds is the current backoff delay for a task instance,
	// per agent.
	RetryDelaySeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleetbot_retry_delay_seconds",
		Help: "Current backoff delay in seconds, per agent.",
	}, []string{"agent"})

	// StoreRevisionsWrittenTotal counts revisions appended to the versioned
	// store, per logical key prefix.
	StoreRevisionsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetbot_store_revisions_written_total",
		Help: "Total revisions written to the versioned store, per key prefix.",
	}, []string{"prefix"})

	// StoreRevisionsPrunedTotal counts revisions removed by cleanup, per
	// logical key prefix.
	StoreRevisionsPrunedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetbot_store_revisions_pruned_total",
		Help: "Total revisions pruned from the versioned store, per key prefix.",
	}, []string{"prefix"})

	// PluginsLoaded is the number of currently-loaded plugin libraries.
	PluginsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleetbot_plugins_loaded",
		Help: "Number of plugin shared libraries currently loaded.",
	})

	// RegistryStateCount is the number of task instances in a given
	// TaskState, per agent. Populated by Collector rather than updated
	// inline, since it requires a full registry scan.
	RegistryStateCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleetbot_registry_state_count",
		Help: "Number of task instances in a given state, per agent.",
	}, []string{"agent", "state"})
)

func init() {
	prometheus.MustRegister(
		TasksInFlight,
		TaskOutcomesTotal,
		TaskRunDuration,
		RetryDelaySeconds,
		StoreRevisionsWrittenTotal,
		StoreRevisionsPrunedTotal,
		PluginsLoaded,
		RegistryStateCount,
	)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall-clock time and reports it to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since NewTimer.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration reports the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(t.Duration().Seconds())
}

// ObserveDurationVec reports the elapsed time to a histogram vector under
// the given label values.
func (t *Timer) ObserveDurationVec(histogram *prometheus.HistogramVec, labelValues ...string) {
	histogram.WithLabelValues(labelValues...).Observe(t.Duration().Seconds())
}
