// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"os"
	"time"

	"github.com/db47h/logicsim"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure tick latency of sample circuits",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  circuitKey,
				Usage: "Sample circuit name, all circuits if empty",
			},
			&cli.UintFlag{
				Name:  ticksKey,
				Usage: "Number of ticks per circuit",
				Value: 10000,
			},
		},
		Action: bench,
	}
}

func bench(ctx context.Context, cmd *cli.Command) error {
	names := sampleNames()
	if n := cmd.String(circuitKey); n != "" {
		if _, err := lookup(n); err != nil {
			return err
		}
		names = []string{n}
	}
	ticks := int(cmd.Uint(ticksKey))
	if ticks < 1 {
		ticks = 1
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Tick latency")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"circuit", "ticks", "events", "ticks/s", "avg", "min", "p75", "p99", "max"})

	for _, name := range names {
		c, _, setup := samples[name].build()
		sim, err := logicsim.NewSimulator(c)
		if err != nil {
			return err
		}
		if setup != nil {
			if err = setup(ctx, sim); err != nil {
				return err
			}
		}
		tach := tachymeter.New(&tachymeter.Config{Size: ticks})
		var events int64
		start := time.Now()
		for i := 0; i < ticks; i++ {
			t0 := time.Now()
			r, err := sim.Tick(ctx)
			if err != nil {
				return err
			}
			tach.AddTime(time.Since(t0))
			events += int64(r.Events)
		}
		elapsed := time.Since(start)
		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				name,
				humanize.Comma(int64(ticks)),
				humanize.Comma(events),
				humanize.Comma(int64(float64(ticks) / elapsed.Seconds())),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}
	tbl.Render()
	return nil
}
