package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IncrementalCounter interface {
	Increment(val ...string)
	Add(n float64, val ...string)
}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

func (c *Counter) Add(n float64, val ...string) {
	c.vec.WithLabelValues(val...).Add(n)
}

func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

type Observer interface {
	Observe(seconds float64, val ...string)
}

type Histogram struct {
	Name string
	Help string

	vec *prometheus.HistogramVec
}

func (h *Histogram) Observe(seconds float64, val ...string) {
	h.vec.WithLabelValues(val...).Observe(seconds)
}

func NewHistogramWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) Observer {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: prometheus.DefBuckets,
	}, labels)

	reg.MustRegister(hist)

	return &Histogram{
		Name: name,
		Help: help,
		vec:  hist,
	}
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
