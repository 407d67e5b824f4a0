// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/internal/config"
	"github.com/db47h/logicsim/internal/logging"
	"github.com/db47h/logicsim/internal/observability"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Tick a sample circuit and print probe values",
		Flags: []cli.Flag{
			circuitFlag(),
			&cli.UintFlag{
				Name:  ticksKey,
				Usage: "Number of ticks to run",
				Value: 16,
			},
			&cli.StringFlag{
				Name:  configKey,
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  metricsKey,
				Usage: "Serve Prometheus metrics on this address",
			},
			&cli.BoolFlag{
				Name:  traceKey,
				Usage: "Print trace spans to stderr",
			},
			&cli.BoolFlag{
				Name:  timedKey,
				Usage: "Run at the configured tick rate instead of as fast as possible",
			},
		},
		Action: run,
	}
}

// probeTable is a logicsim.Listener that collects probe values after every
// tick.
type probeTable struct {
	sim    *logicsim.Simulator
	probes []probe
	max    int

	mu   sync.Mutex
	rows []table.Row
	full chan struct{}
}

func newProbeTable(probes []probe, max int) *probeTable {
	t := &probeTable{probes: probes, max: max, full: make(chan struct{})}
	if max <= 0 {
		close(t.full)
	}
	return t
}

func (t *probeTable) PropagationCompleted(logicsim.Report) {}
func (t *probeTable) StateChanged(bool)                    {}

func (t *probeTable) TickCompleted(r logicsim.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rows) >= t.max {
		return
	}
	row := table.Row{r.Ticks}
	for _, p := range t.probes {
		row = append(row, t.sim.Value(p.loc).String())
	}
	row = append(row, r.Status.String(), r.Steps, r.Events)
	t.rows = append(t.rows, row)
	if len(t.rows) == t.max {
		close(t.full)
	}
}

func (t *probeTable) render(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	hdr := table.Row{"tick"}
	for _, p := range t.probes {
		hdr = append(hdr, p.name)
	}
	hdr = append(hdr, "status", "steps", "events")
	tbl.AppendHeader(hdr)
	tbl.AppendRows(t.rows)
	tbl.Render()
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String(configKey))
	if err != nil {
		return err
	}
	if cmd.IsSet(metricsKey) {
		cfg.Metrics.Addr = cmd.String(metricsKey)
	}
	if cmd.Bool(traceKey) {
		cfg.Tracing.Enabled = true
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: cfg.Tracing.Enabled,
		Writer:  os.Stderr,
	}, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	var metrics logicsim.Metrics
	if cfg.Metrics.Addr != "" {
		col, err := observability.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		metrics = col
		mux := http.NewServeMux()
		mux.Handle("/metrics", col.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server", slog.Any("error", err))
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("serving metrics", slog.String("addr", cfg.Metrics.Addr))
	}

	name := cmd.String(circuitKey)
	smp, err := lookup(name)
	if err != nil {
		return err
	}
	c, probes, setup := smp.build()
	ticks := int(cmd.Uint(ticksKey))
	pt := newProbeTable(probes, ticks)
	opts := append(cfg.SimulatorOptions(log, metrics), logicsim.WithListener(pt))
	sim, err := logicsim.NewSimulator(c, opts...)
	if err != nil {
		return err
	}
	pt.sim = sim
	if setup != nil {
		if err = setup(ctx, sim); err != nil {
			return err
		}
	}

	if cmd.Bool(timedKey) {
		err = runTimed(ctx, sim, pt, cfg.TickRate)
	} else {
		for i := 0; i < ticks && err == nil; i++ {
			_, err = sim.Tick(ctx)
		}
	}
	pt.render(name)
	if err != nil {
		return errors.Wrapf(err, "circuit %s", name)
	}

	r := sim.LastReport()
	for _, n := range r.Oscillating {
		log.Warn("oscillating net", slog.String("net", n.String()))
	}
	for _, n := range r.Errors {
		log.Warn("net in error", slog.String("net", n.String()))
	}
	return nil
}

func runTimed(ctx context.Context, sim *logicsim.Simulator, pt *probeTable, tps float64) error {
	if err := sim.Run(ctx, tps); err != nil {
		return err
	}
	stopped := make(chan struct{})
	go func() {
		sim.Wait()
		close(stopped)
	}()
	select {
	case <-pt.full:
	case <-stopped:
	case <-ctx.Done():
	}
	sim.Pause()
	return nil
}
