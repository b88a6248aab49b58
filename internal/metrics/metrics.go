package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the measurement store.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Ingested           prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	QueryDurations     *prometheus.HistogramVec
	LayerMeasurements  prometheus.Gauge
}

// New registers the metrics against reg, defaulting to the global registry
// when nil. Registering twice against the same registry returns the existing
// collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ingested, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sdr_measurements_ingested_total",
		Help: "Total number of measurements accepted and stored.",
	}), "sdr_measurements_ingested_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sdr_validation_failures_total",
		Help: "Rejected inputs, labeled by validation kind.",
	}, []string{"kind"}), "sdr_validation_failures_total")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sdr_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "sdr_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sdr_query_duration_seconds",
		Help:    "Layer query and aggregation latency in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"op"}), "sdr_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	layerSize, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sdr_layer_measurements",
		Help: "Number of measurements in the published layer snapshot.",
	}), "sdr_layer_measurements")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Ingested:           ingested,
		ValidationFailures: failures,
		HTTPRequests:       requests,
		QueryDurations:     durations,
		LayerMeasurements:  layerSize,
	}, nil
}

// AddIngested counts n stored measurements
func (c *Collector) AddIngested(n int) {
	if c == nil {
		return
	}
	c.Ingested.Add(float64(n))
}

// ValidationFailure counts one rejected input of the given kind
func (c *Collector) ValidationFailure(kind fmt.Stringer) {
	if c == nil {
		return
	}
	c.ValidationFailures.WithLabelValues(kind.String()).Inc()
}

// HTTPRequest counts one handled request
func (c *Collector) HTTPRequest(method, route string, code int) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// ObserveQuery records how long op took since start
func (c *Collector) ObserveQuery(op string, start time.Time) {
	if c == nil {
		return
	}
	c.QueryDurations.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetLayerMeasurements publishes the snapshot size
func (c *Collector) SetLayerMeasurements(n int) {
	if c == nil {
		return
	}
	c.LayerMeasurements.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
