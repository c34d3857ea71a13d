package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights engine.
type Metrics struct {
	// Aggregation metrics
	Aggregations      *prometheus.CounterVec
	AggregateEntities prometheus.Histogram

	// Segment metrics
	SegmentResolutions  *prometheus.CounterVec
	SegmentCacheLookups *prometheus.CounterVec

	// Suggestion metrics
	ActionMappings *prometheus.CounterVec

	// Build metrics
	BuildsAssembled *prometheus.CounterVec
	BuildsSubmitted *prometheus.CounterVec

	// Status toggle metrics
	StatusToggles   *prometheus.CounterVec
	TogglesInFlight prometheus.Gauge

	// Execution backend metrics
	BackendLatency *prometheus.HistogramVec

	// System metrics
	DBConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all Prometheus metrics on reg. A nil reg
// registers on the process-wide default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	f := promauto.With(reg)

	m := &Metrics{
		// Aggregation metrics
		Aggregations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregations_total",
				Help:      "Total aggregations computed",
			},
			[]string{"scope"}, // request, account
		),
		AggregateEntities: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregate_entities",
				Help:      "Number of entities folded per aggregation",
				Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),

		// Segment metrics
		SegmentResolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segment_resolutions_total",
				Help:      "Resolved segment dimensions by data source",
			},
			[]string{"platform", "source"}, // real, synthetic
		),
		SegmentCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segment_cache_lookups_total",
				Help:      "Synthetic segment cache lookups",
			},
			[]string{"result"}, // hit, miss, stale, error
		),

		// Suggestion metrics
		ActionMappings: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_mappings_total",
				Help:      "Suggestions mapped to executable actions",
			},
			[]string{"suggestion_type", "action_type"},
		),

		// Build metrics
		BuildsAssembled: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_assembled_total",
				Help:      "Build configurations assembled",
			},
			[]string{"platform", "build_type"},
		),
		BuildsSubmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_submitted_total",
				Help:      "Build configurations submitted to the execution backend",
			},
			[]string{"platform", "status"},
		),

		// Status toggle metrics
		StatusToggles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_toggles_total",
				Help:      "Status toggle attempts by outcome",
			},
			[]string{"outcome"}, // success, rolled_back, in_flight, terminal
		),
		TogglesInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "status_toggles_in_flight",
				Help:      "Status toggles awaiting the remote mutation",
			},
		),

		// Execution backend metrics
		BackendLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_latency_seconds",
				Help:      "Execution backend call latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "status"},
		),

		// System metrics
		DBConnections: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),

		// Rate limiting metrics
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint"},
		),

		gatherer: gatherer,
	}

	return m
}

// Handler returns the Prometheus metrics HTTP handler for the registry the
// metrics were created on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordAggregation records one aggregation over n entities.
func (m *Metrics) RecordAggregation(scope string, n int) {
	m.Aggregations.WithLabelValues(scope).Inc()
	m.AggregateEntities.Observe(float64(n))
}

// RecordSegmentResolution records the data source chosen for one dimension.
func (m *Metrics) RecordSegmentResolution(platform, source string) {
	m.SegmentResolutions.WithLabelValues(platform, source).Inc()
}

// RecordCacheLookup records a synthetic segment cache lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	m.SegmentCacheLookups.WithLabelValues(result).Inc()
}

// RecordActionMapping records a suggestion mapping. An empty action type
// means the suggestion needs manual review.
func (m *Metrics) RecordActionMapping(suggestionType, actionType string) {
	if actionType == "" {
		actionType = "manual"
	}
	m.ActionMappings.WithLabelValues(suggestionType, actionType).Inc()
}

// RecordBuildAssembled records an assembled build configuration.
func (m *Metrics) RecordBuildAssembled(platform, buildType string) {
	m.BuildsAssembled.WithLabelValues(platform, buildType).Inc()
}

// RecordBuildSubmitted records a build submission result.
func (m *Metrics) RecordBuildSubmitted(platform string, success bool) {
	m.BuildsSubmitted.WithLabelValues(platform, outcome(success)).Inc()
}

// RecordToggle records the outcome of a status toggle.
func (m *Metrics) RecordToggle(outcome string) {
	m.StatusToggles.WithLabelValues(outcome).Inc()
}

// RecordBackendCall records an execution backend call.
func (m *Metrics) RecordBackendCall(operation string, success bool, latency time.Duration) {
	m.BackendLatency.WithLabelValues(operation, outcome(success)).Observe(latency.Seconds())
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
