package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	Registry *prometheus.Registry

	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	RateLimitedTotal   prometheus.Counter

	// Assessment Metrics
	CalculationsTotal *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	SafetyFactor      prometheus.Histogram
	Probability       prometheus.Histogram

	// Classifier Metrics
	ModelLoaded      prometheus.Gauge
	ModelReloadTotal *prometheus.CounterVec

	// Batch Metrics
	BatchRowsTotal prometheus.Counter
	BatchDuration  prometheus.Histogram
}

// NewCollector creates a collector registered on its own registry, which
// also carries the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_rate_limited_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),

		CalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of safety factor calculations by outcome class",
			},
			[]string{"class"},
		),

		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculation_failures_total",
				Help:      "Total number of failed safety factor calculations by failure kind",
			},
			[]string{"kind"},
		),

		SafetyFactor: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "safety_factor",
				Help:      "Distribution of computed factors of safety",
				Buckets:   []float64{0.25, 0.5, 0.75, 1.0, 1.15, 1.3, 1.5, 2.0, 3.0, 5.0},
			},
		),

		Probability: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "liquefaction_probability",
				Help:      "Distribution of classifier probabilities",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
			},
		),

		ModelLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_loaded",
				Help:      "1 when classifier artifacts are loaded",
			},
		),

		ModelReloadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_reloads_total",
				Help:      "Total number of classifier artifact reloads by result",
			},
			[]string{"result"},
		),

		BatchRowsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_rows_processed_total",
				Help:      "Total number of batch rows scored",
			},
		),

		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of batch runs in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
	}
}

// RecordAPIRequest records an API request with its duration
func (c *Collector) RecordAPIRequest(endpoint, method, status string, duration time.Duration) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCalculation records the outcome of a safety factor calculation.
// fs is nil when the calculation failed with the given kind.
func (c *Collector) RecordCalculation(class string, fs *float64, kind string) {
	c.CalculationsTotal.WithLabelValues(class).Inc()
	if fs != nil {
		c.SafetyFactor.Observe(*fs)
		return
	}
	c.FailuresTotal.WithLabelValues(kind).Inc()
}

// RecordProbability records a classifier prediction
func (c *Collector) RecordProbability(p float64) {
	c.Probability.Observe(p)
}

// RecordModelReload records an artifact reload attempt
func (c *Collector) RecordModelReload(err error, loaded bool) {
	if err != nil {
		c.ModelReloadTotal.WithLabelValues("error").Inc()
	} else {
		c.ModelReloadTotal.WithLabelValues("ok").Inc()
	}
	c.SetModelLoaded(loaded)
}

// SetModelLoaded updates the model gauge
func (c *Collector) SetModelLoaded(loaded bool) {
	if loaded {
		c.ModelLoaded.Set(1)
	} else {
		c.ModelLoaded.Set(0)
	}
}

// RecordBatch records a finished batch run
func (c *Collector) RecordBatch(rows int, duration time.Duration) {
	c.BatchRowsTotal.Add(float64(rows))
	c.BatchDuration.Observe(duration.Seconds())
}
