// Package prometheus registers and serves the service metrics: HTTP traffic,
// preparation and docking job outcomes, external tool runs, remote source
// fetches, and cache effectiveness.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Duration buckets tuned to the two workload classes: HTTP handling is
// sub-second, tool runs and docking take seconds to minutes.
var (
	httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	toolDurationBuckets = []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600}
)

// Metrics holds every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PreparationsTotal   *prometheus.CounterVec
	PreparationDuration *prometheus.HistogramVec

	DockingJobsTotal   *prometheus.CounterVec
	DockingJobDuration prometheus.Histogram
	DockingPosesFound  prometheus.Histogram

	ToolRunsTotal   *prometheus.CounterVec
	ToolRunDuration *prometheus.HistogramVec

	RemoteFetchesTotal *prometheus.CounterVec
	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec
}

// New builds and registers all metrics on a fresh registry, along with the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})
	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dockprep_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: httpDurationBuckets,
	}, []string{"method", "path"})

	m.PreparationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_preparations_total",
		Help: "Structure preparations by kind and outcome",
	}, []string{"kind", "status"})
	m.PreparationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dockprep_preparation_duration_seconds",
		Help:    "Structure preparation duration",
		Buckets: toolDurationBuckets,
	}, []string{"kind"})

	m.DockingJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_docking_jobs_total",
		Help: "Docking jobs by outcome",
	}, []string{"status"})
	m.DockingJobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dockprep_docking_job_duration_seconds",
		Help:    "End-to-end docking job duration",
		Buckets: toolDurationBuckets,
	})
	m.DockingPosesFound = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dockprep_docking_poses_found",
		Help:    "Poses extracted per docking job",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	})

	m.ToolRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_tool_runs_total",
		Help: "External tool invocations by binary and outcome",
	}, []string{"tool", "status"})
	m.ToolRunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dockprep_tool_run_duration_seconds",
		Help:    "External tool run duration",
		Buckets: toolDurationBuckets,
	}, []string{"tool"})

	m.RemoteFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_remote_fetches_total",
		Help: "Remote source fetches by source and outcome",
	}, []string{"source", "status"})
	m.CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_cache_hits_total",
		Help: "Cache hits",
	}, []string{"cache"})
	m.CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockprep_cache_misses_total",
		Help: "Cache misses",
	}, []string{"cache"})

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.PreparationsTotal, m.PreparationDuration,
		m.DockingJobsTotal, m.DockingJobDuration, m.DockingPosesFound,
		m.ToolRunsTotal, m.ToolRunDuration,
		m.RemoteFetchesTotal, m.CacheHitsTotal, m.CacheMissesTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
