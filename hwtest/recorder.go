// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/db47h/logicsim"
)

// A Sample holds the values of the recorded probes after a tick.
//
type Sample struct {
	Tick   uint64
	Status logicsim.Status
	Values []logicsim.Value
}

// Recorder is a logicsim.Listener that records the values of a set of probe
// locations after every tick.
//
//	rec := hwtest.NewRecorder(map[string]logicsim.Location{"q": q})
//	sim, _ := logicsim.NewSimulator(c, logicsim.WithListener(rec))
//	rec.Attach(sim)
//
type Recorder struct {
	names []string
	locs  []logicsim.Location

	mu      sync.Mutex
	sim     *logicsim.Simulator
	samples []Sample
	running []bool
}

// NewRecorder returns a recorder for the given probes. Probes are recorded in
// name order.
//
func NewRecorder(probes map[string]logicsim.Location) *Recorder {
	r := &Recorder{}
	for n := range probes {
		r.names = append(r.names, n)
	}
	sort.Strings(r.names)
	for _, n := range r.names {
		r.locs = append(r.locs, probes[n])
	}
	return r
}

// Attach sets the simulator probes are read from.
//
func (r *Recorder) Attach(s *logicsim.Simulator) {
	r.mu.Lock()
	r.sim = s
	r.mu.Unlock()
}

// PropagationCompleted implements logicsim.Listener.
//
func (r *Recorder) PropagationCompleted(logicsim.Report) {}

// TickCompleted implements logicsim.Listener.
//
func (r *Recorder) TickCompleted(rep logicsim.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sim == nil {
		return
	}
	s := Sample{Tick: rep.Ticks, Status: rep.Status, Values: make([]logicsim.Value, len(r.locs))}
	for i, l := range r.locs {
		s.Values[i] = r.sim.Value(l)
	}
	r.samples = append(r.samples, s)
}

// StateChanged implements logicsim.Listener.
//
func (r *Recorder) StateChanged(running bool) {
	r.mu.Lock()
	r.running = append(r.running, running)
	r.mu.Unlock()
}

// Names returns the probe names.
//
func (r *Recorder) Names() []string { return r.names }

// Samples returns a copy of the recorded samples.
//
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// Trace returns the recorded values of a single probe.
//
func (r *Recorder) Trace(name string) []logicsim.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, n := range r.names {
		if n == name {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	t := make([]logicsim.Value, len(r.samples))
	for i, s := range r.samples {
		t[i] = s.Values[idx]
	}
	return t
}

// Transitions returns the run state changes reported by the simulator.
//
func (r *Recorder) Transitions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.running...)
}

// String returns one line per sample.
//
func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, s := range r.samples {
		b.WriteString(strconv.FormatUint(s.Tick, 10))
		for i, v := range s.Values {
			b.WriteByte(' ')
			b.WriteString(r.names[i])
			b.WriteByte('=')
			b.WriteString(v.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
