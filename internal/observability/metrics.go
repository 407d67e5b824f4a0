// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for simulations.
//
package observability

import (
	"net/http"
	"time"

	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of a simulator. It implements
// logicsim.Metrics.
//
type Collector struct {
	gatherer prometheus.Gatherer

	Passes       *prometheus.CounterVec
	PassSteps    prometheus.Histogram
	PassDuration prometheus.Histogram
	Events       prometheus.Counter
	Ticks        prometheus.Counter
	Faults       prometheus.Counter
}

var _ logicsim.Metrics = (*Collector)(nil)

// NewCollector registers simulator metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the existing collectors.
//
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	passes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "logicsim_passes_total",
		Help: "Total number of propagation passes, labeled by outcome.",
	}, []string{"status"}), "logicsim_passes_total")
	if err != nil {
		return nil, err
	}
	steps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logicsim_pass_steps",
		Help:    "Number of micro-steps per propagation pass.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}), "logicsim_pass_steps")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logicsim_pass_duration_seconds",
		Help:    "Propagation pass latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}), "logicsim_pass_duration_seconds")
	if err != nil {
		return nil, err
	}
	events, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logicsim_events_total",
		Help: "Total number of processed events.",
	}), "logicsim_events_total")
	if err != nil {
		return nil, err
	}
	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logicsim_ticks_total",
		Help: "Total number of clock ticks.",
	}), "logicsim_ticks_total")
	if err != nil {
		return nil, err
	}
	faults, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logicsim_faults_total",
		Help: "Total number of aborted propagation passes.",
	}), "logicsim_faults_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Passes:       passes,
		PassSteps:    steps,
		PassDuration: duration,
		Events:       events,
		Ticks:        ticks,
		Faults:       faults,
	}, nil
}

// ObservePass implements logicsim.Metrics.
//
func (c *Collector) ObservePass(status logicsim.Status, steps, events int, d time.Duration) {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues(status.String()).Inc()
	c.PassSteps.Observe(float64(steps))
	c.PassDuration.Observe(d.Seconds())
	c.Events.Add(float64(events))
}

// ObserveTick implements logicsim.Metrics.
//
func (c *Collector) ObserveTick() {
	if c != nil {
		c.Ticks.Inc()
	}
}

// ObserveFault implements logicsim.Metrics.
//
func (c *Collector) ObserveFault() {
	if c != nil {
		c.Faults.Inc()
	}
}

// Handler returns an HTTP handler exposing the registered metrics.
//
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
