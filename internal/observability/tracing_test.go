// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/db47h/logicsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracing(t *testing.T) {
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := InitTracing(ctx, TracingConfig{Enabled: true, Writer: &buf}, nil)
	require.NoError(t, err)

	s := logicsim.NewSocket()
	pin := logicsim.NewInputPin("a", 1, s.Loc("a"))
	sim, err := logicsim.NewSimulator(logicsim.NewCircuit("traced").Add(pin))
	require.NoError(t, err)
	_, err = sim.Step(ctx)
	require.NoError(t, err)

	ShutdownWithTimeout(ctx, shutdown, nil)
	assert.Contains(t, buf.String(), "logicsim.Step")
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
