// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObservePass(logicsim.StatusStable, 3, 7, time.Millisecond)
	c.ObservePass(logicsim.StatusOscillating, 4096, 8192, time.Millisecond)
	c.ObserveTick()
	c.ObserveFault()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Passes.WithLabelValues("stable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Passes.WithLabelValues("oscillating")))
	assert.Equal(t, 8199.0, testutil.ToFloat64(c.Events))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Faults))
}

func TestCollectorRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	c1, err := NewCollector(reg)
	require.NoError(t, err)
	c2, err := NewCollector(reg)
	require.NoError(t, err)
	c1.ObserveTick()
	assert.Equal(t, 1.0, testutil.ToFloat64(c2.Ticks))
}

func TestCollectorWithSimulator(t *testing.T) {
	reg := prometheus.NewRegistry()
	col, err := NewCollector(reg)
	require.NoError(t, err)

	s := logicsim.NewSocket()
	c := logicsim.NewCircuit("clocked").Add(
		hwlib.NewClock(1, 1, s.Loc("clk")),
		hwlib.Not(1, s.Loc("clk"), s.Loc("nclk")),
	)
	sim, err := logicsim.NewSimulator(c, logicsim.WithMetrics(col))
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = sim.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 4.0, testutil.ToFloat64(col.Ticks))
	assert.Equal(t, 8.0, testutil.ToFloat64(col.Passes.WithLabelValues("stable")))

	srv := httptest.NewServer(col.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "logicsim_ticks_total 4"), string(body))
}
