// Package prometheus wraps the Prometheus client behind small metric
// interfaces so application code never depends on the client library
// directly. Registration failures degrade to no-op metrics instead of
// panicking.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metrics on a private registry and serves
// them over HTTP.  Each process builds exactly one; the private registry
// keeps test processes from tripping over duplicate registrations on the
// global default.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

// CounterVec resolves label values to a Counter.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter is a monotonically increasing value.
type Counter interface {
	Inc()
	Add(delta float64)
}

// GaugeVec resolves label values to a Gauge.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge is a value that can move in both directions.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
	Sub(delta float64)
}

// HistogramVec resolves label values to a Histogram.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram records observations into buckets.
type Histogram interface {
	Observe(value float64)
}

// CollectorConfig controls metric naming and the optional runtime
// collectors.
type CollectorConfig struct {
	Namespace               string
	Subsystem               string
	EnableProcessMetrics    bool
	EnableGoMetrics         bool
	DefaultHistogramBuckets []float64
	ConstLabels             map[string]string
}

type collector struct {
	registry *prometheus.Registry
	cfg      CollectorConfig
	log      logging.Logger

	mu    sync.Mutex
	byFQN map[string]prometheus.Collector
}

// NewMetricsCollector builds a collector with its own registry.
// Namespace is mandatory; it prefixes every metric this process emits.
func NewMetricsCollector(cfg CollectorConfig, log logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.DefaultHistogramBuckets == nil {
		cfg.DefaultHistogramBuckets = prometheus.DefBuckets
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{
			Namespace: cfg.Namespace,
		}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(prometheus.NewGoCollector())
	}

	return &collector{
		registry: reg,
		cfg:      cfg,
		log:      log,
		byFQN:    make(map[string]prometheus.Collector),
	}, nil
}

// Handler serves the scrape endpoint for this collector's registry.
func (c *collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// getOrRegister makes registration idempotent per fully-qualified name:
// the first collector registered under a name wins and later calls get it
// back, so two components may safely declare the same metric.
func (c *collector) getOrRegister(name string, fresh prometheus.Collector) (prometheus.Collector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fqn := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
	if prev, ok := c.byFQN[fqn]; ok {
		return prev, nil
	}
	if err := c.registry.Register(fresh); err != nil {
		return nil, err
	}
	c.byFQN[fqn] = fresh
	return fresh, nil
}

func (c *collector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, err := c.getOrRegister(name, vec)
	if err != nil {
		c.log.Error("counter registration failed", logging.String("name", name), logging.Err(err))
		return nopCounterVec{}
	}
	cv, ok := got.(*prometheus.CounterVec)
	if !ok {
		c.log.Warn("metric already registered with a different type",
			logging.String("name", name), logging.String("want", "counter"))
		return nopCounterVec{}
	}
	return counterVec{cv}
}

func (c *collector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, err := c.getOrRegister(name, vec)
	if err != nil {
		c.log.Error("gauge registration failed", logging.String("name", name), logging.Err(err))
		return nopGaugeVec{}
	}
	gv, ok := got.(*prometheus.GaugeVec)
	if !ok {
		c.log.Warn("metric already registered with a different type",
			logging.String("name", name), logging.String("want", "gauge"))
		return nopGaugeVec{}
	}
	return gaugeVec{gv}
}

func (c *collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.cfg.DefaultHistogramBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.cfg.Namespace,
		Subsystem:   c.cfg.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.cfg.ConstLabels,
		Buckets:     buckets,
	}, labels)

	got, err := c.getOrRegister(name, vec)
	if err != nil {
		c.log.Error("histogram registration failed", logging.String("name", name), logging.Err(err))
		return nopHistogramVec{}
	}
	hv, ok := got.(*prometheus.HistogramVec)
	if !ok {
		c.log.Warn("metric already registered with a different type",
			logging.String("name", name), logging.String("want", "histogram"))
		return nopHistogramVec{}
	}
	return histogramVec{hv}
}

// ── Live wrappers ─────────────────────────────────────────────────────────────

type counterVec struct{ v *prometheus.CounterVec }

func (w counterVec) WithLabelValues(lvs ...string) Counter { return w.v.WithLabelValues(lvs...) }

type gaugeVec struct{ v *prometheus.GaugeVec }

func (w gaugeVec) WithLabelValues(lvs ...string) Gauge { return w.v.WithLabelValues(lvs...) }

type histogramVec struct{ v *prometheus.HistogramVec }

func (w histogramVec) WithLabelValues(lvs ...string) Histogram {
	return w.v.WithLabelValues(lvs...)
}

// ── No-op fallbacks ───────────────────────────────────────────────────────────

type nopCounterVec struct{}

func (nopCounterVec) WithLabelValues(...string) Counter { return nopCounter{} }

type nopCounter struct{}

func (nopCounter) Inc()        {}
func (nopCounter) Add(float64) {}

type nopGaugeVec struct{}

func (nopGaugeVec) WithLabelValues(...string) Gauge { return nopGauge{} }

type nopGauge struct{}

func (nopGauge) Set(float64) {}
func (nopGauge) Inc()        {}
func (nopGauge) Dec()        {}
func (nopGauge) Add(float64) {}
func (nopGauge) Sub(float64) {}

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(...string) Histogram { return nopHistogram{} }

type nopHistogram struct{}

func (nopHistogram) Observe(float64) {}

// ── Timer ─────────────────────────────────────────────────────────────────────

// Timer observes elapsed seconds on a histogram.  A nil histogram makes
// ObserveDuration a no-op.
type Timer struct {
	h     Histogram
	start time.Time
}

func NewTimer(h Histogram) *Timer {
	return &Timer{h: h, start: time.Now()}
}

func (t *Timer) ObserveDuration() {
	if t.h == nil {
		return
	}
	t.h.Observe(time.Since(t.start).Seconds())
}
