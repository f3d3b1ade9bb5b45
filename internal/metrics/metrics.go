// Package metrics exposes conversion outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/rewrite"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// Outcome label values.
const (
	OutcomeOK            = "ok"
	OutcomeParseError    = "parse_error"
	OutcomeUnknownSymbol = "unknown_symbol"
	OutcomeArityError    = "arity_error"
	OutcomeError         = "error"
)

// Collector records every converted line. It implements ports.Observer.
type Collector struct {
	registry *prometheus.Registry
	lines    *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates a Collector with its own registry, which also carries the
// Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clevrprog_lines_total",
				Help: "Total number of converted expression lines by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clevrprog_line_duration_seconds",
				Help:    "Duration of single line conversions",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
	c.registry.MustRegister(
		c.lines,
		c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveLine records one conversion.
func (c *Collector) ObserveLine(elapsed time.Duration, err error) {
	c.lines.WithLabelValues(Outcome(err)).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Outcome maps a conversion error to its label value.
func Outcome(err error) string {
	var arity *rewrite.ArityError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, sexpr.ErrParse):
		return OutcomeParseError
	case errors.Is(err, catalog.ErrUnknownSymbol):
		return OutcomeUnknownSymbol
	case errors.As(err, &arity):
		return OutcomeArityError
	}
	return OutcomeError
}
