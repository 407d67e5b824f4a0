// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/db47h/logicsim"

// Metrics receives simulation statistics.
//
type Metrics interface {
	ObservePass(status Status, steps, events int, d time.Duration)
	ObserveTick()
	ObserveFault()
}

type nopMetrics struct{}

func (nopMetrics) ObservePass(Status, int, int, time.Duration) {}
func (nopMetrics) ObserveTick()                                {}
func (nopMetrics) ObserveFault()                               {}

// A Listener is notified of simulator activity. Listeners are called from the
// goroutine that triggered the activity, without holding the simulator lock.
// They must not call Pause.
//
type Listener interface {
	PropagationCompleted(r Report)
	TickCompleted(r Report)
	StateChanged(running bool)
}

// Option configures a Simulator.
//
type Option func(*Simulator)

// WithLogger sets the simulator logger.
//
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
//
func WithMetrics(m Metrics) Option {
	return func(s *Simulator) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStepLimit sets the micro-step limit of propagation passes. See
// Propagator.SetStepLimit.
//
func WithStepLimit(n int) Option {
	return func(s *Simulator) { s.stepLimit = n }
}

// WithListener registers a listener.
//
func WithListener(l Listener) Option {
	return func(s *Simulator) { s.listeners = append(s.listeners, l) }
}

// WithTracer sets the tracer used for Step and Tick spans. It defaults to the
// global otel tracer provider.
//
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulator) {
		if t != nil {
			s.tracer = t
		}
	}
}

type forcing struct {
	pin *Pin
	v   Value
}

// A Simulator drives a Propagator: single steps, clock ticks and timed
// auto-run on a background goroutine. All methods are safe for concurrent
// use.
//
type Simulator struct {
	mu        sync.Mutex
	prop      *Propagator
	pending   []forcing
	last      Report
	opts      []Option
	log       *slog.Logger
	metrics   Metrics
	tracer    trace.Tracer
	listeners []Listener
	stepLimit int

	running atomic.Bool
	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSimulator returns a new simulator for circuit c.
//
func NewSimulator(c *Circuit, opts ...Option) (*Simulator, error) {
	p, err := NewPropagator(c)
	if err != nil {
		return nil, err
	}
	return newSimulator(p, opts), nil
}

func newSimulator(p *Propagator, opts []Option) *Simulator {
	s := &Simulator{
		prop:    p,
		opts:    opts,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: nopMetrics{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(s)
	}
	p.SetLogger(s.log)
	p.SetStepLimit(s.stepLimit)
	return s
}

// Force queues a new value for input pin. Queued values are applied at the
// beginning of the next Step or Tick.
//
func (s *Simulator) Force(pin *Pin, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prop.root.nl.index[pin]; !ok {
		return errors.Wrapf(ErrBadPort, "pin %s not in circuit %s", pin.label, s.prop.circuit.name)
	}
	if pin.output {
		return errors.Wrapf(ErrOutputPin, "force pin %s", pin.label)
	}
	if v.Width() != pin.width {
		return errors.Wrapf(&WidthError{Op: "force pin", Want: pin.width, Got: v.Width()}, "pin %s", pin.label)
	}
	s.pending = append(s.pending, forcing{pin, v})
	return nil
}

func (s *Simulator) applyForcings() error {
	for i, f := range s.pending {
		if err := s.prop.root.ForcePin(f.pin, f.v); err != nil {
			s.pending = s.pending[i+1:]
			return err
		}
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *Simulator) observe(r Report, err error, d time.Duration) {
	if err != nil {
		s.metrics.ObserveFault()
		return
	}
	s.metrics.ObservePass(r.Status, r.Steps, r.Events, d)
	if r.Status == StatusOscillating {
		s.log.Warn("oscillation detected",
			slog.String("circuit", s.prop.circuit.name),
			slog.Uint64("tick", r.Ticks),
			slog.Int("nets", len(r.Oscillating)))
	}
}

func endSpan(span trace.Span, r Report, err error) {
	span.SetAttributes(
		attribute.String("status", r.Status.String()),
		attribute.Int("steps", r.Steps),
		attribute.Int("events", r.Events),
		attribute.Int64("tick", int64(r.Ticks)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Step applies pending pin forcings and propagates until the circuit is
// stable or oscillating.
//
func (s *Simulator) Step(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	_, span := s.tracer.Start(ctx, "logicsim.Step")
	s.mu.Lock()
	r, err := s.step()
	s.mu.Unlock()
	endSpan(span, r, err)
	if err == nil {
		for _, l := range s.listeners {
			l.PropagationCompleted(r)
		}
	}
	return r, err
}

func (s *Simulator) step() (Report, error) {
	if err := s.applyForcings(); err != nil {
		return Report{}, err
	}
	start := time.Now()
	r, err := s.prop.Propagate()
	s.observe(r, err, time.Since(start))
	if err == nil {
		s.last = r
	}
	return r, err
}

// Tick applies pending pin forcings, propagates, then advances the clock by one
// tick and propagates again. The clock does not advance if the first pass
// oscillates.
//
func (s *Simulator) Tick(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	_, span := s.tracer.Start(ctx, "logicsim.Tick")
	s.mu.Lock()
	r, err := s.step()
	if err == nil && r.Status == StatusStable {
		start := time.Now()
		r, err = s.prop.Tick()
		s.observe(r, err, time.Since(start))
		if err == nil {
			s.metrics.ObserveTick()
			s.last = r
		}
	}
	s.mu.Unlock()
	endSpan(span, r, err)
	if err == nil {
		for _, l := range s.listeners {
			l.TickCompleted(r)
		}
	}
	return r, err
}

// bounds of the run loop schedule. Slower or faster rates are clamped.
const (
	maxTickPeriod     = 24 * time.Hour
	maxTicksPerPeriod = 1 << 20
)

// tickPeriod returns the ticker period and the number of ticks to run per
// period for the given frequency.
func tickPeriod(tps float64) (time.Duration, int) {
	if tps <= 1000 {
		d := math.Round(float64(time.Second) / tps)
		if d > float64(maxTickPeriod) {
			return maxTickPeriod, 1
		}
		return time.Duration(d), 1
	}
	return time.Millisecond, int(math.Min(math.Round(tps/1000), maxTicksPerPeriod))
}

// Run starts ticking the simulation at the given rate on a new goroutine. It
// returns immediately. The run stops when ctx is cancelled, Pause is called, a
// pass oscillates or a component fault occurs.
//
func (s *Simulator) Run(ctx context.Context, ticksPerSecond float64) error {
	if ticksPerSecond <= 0 || math.IsInf(ticksPerSecond, 0) || math.IsNaN(ticksPerSecond) {
		return errors.Errorf("invalid tick rate %v", ticksPerSecond)
	}
	s.runMu.Lock()
	if s.running.Load() {
		s.runMu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.running.Store(true)
	s.runMu.Unlock()

	period, n := tickPeriod(ticksPerSecond)
	s.log.Info("simulation started",
		slog.String("circuit", s.prop.circuit.name),
		slog.Float64("tps", ticksPerSecond),
		slog.Duration("period", period))
	for _, l := range s.listeners {
		l.StateChanged(true)
	}
	go s.loop(ctx, cancel, done, period, n)
	return nil
}

func (s *Simulator) loop(ctx context.Context, cancel context.CancelFunc, done chan struct{}, period time.Duration, n int) {
	defer func() {
		cancel()
		s.running.Store(false)
		s.log.Info("simulation stopped", slog.String("circuit", s.prop.circuit.name), slog.Uint64("ticks", s.TickCount()))
		for _, l := range s.listeners {
			l.StateChanged(false)
		}
		close(done)
	}()
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for i := 0; i < n; i++ {
				r, err := s.Tick(ctx)
				if err != nil {
					if ctx.Err() == nil {
						s.log.Error("simulation fault", slog.Any("error", err))
					}
					return
				}
				if r.Status == StatusOscillating {
					return
				}
			}
		}
	}
}

// Pause stops a running simulation and waits for the run loop to exit.
//
func (s *Simulator) Pause() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current run stops by itself or is paused.
//
func (s *Simulator) Wait() {
	s.runMu.Lock()
	done := s.done
	s.runMu.Unlock()
	if done != nil {
		<-done
	}
}

// Running returns true while the simulation is auto-running.
//
func (s *Simulator) Running() bool { return s.running.Load() }

// Reset drops pending forcings and resets the propagator. The simulation is
// paused first.
//
func (s *Simulator) Reset() error {
	s.Pause()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.last = Report{}
	return s.prop.Reset()
}

// Fork returns a paused copy of the simulator with an independent state. The
// copy uses the same options as s.
//
func (s *Simulator) Fork() *Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := newSimulator(s.prop.Clone(), s.opts)
	f.pending = append([]forcing(nil), s.pending...)
	f.last = s.last
	return f
}

// Inspect calls fn with the root state while holding the simulator lock. fn
// must not retain the state nor call other simulator methods.
//
func (s *Simulator) Inspect(fn func(root *CircuitState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.prop.root)
}

// Value returns the value of the root net at location l.
//
func (s *Simulator) Value(l Location) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prop.root.Value(l)
}

// TickCount returns the number of ticks run since creation or the last Reset.
//
func (s *Simulator) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prop.ticks
}

// LastReport returns the report of the last successful propagation pass.
//
func (s *Simulator) LastReport() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
