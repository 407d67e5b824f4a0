// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logicsim runs the sample circuits of the logicsim package.
//
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	circuitKey = "circuit"
	ticksKey   = "ticks"
	configKey  = "config"
	metricsKey = "metrics-addr"
	traceKey   = "trace"
	timedKey   = "timed"
)

func main() {
	cmd := &cli.Command{
		Name:  "logicsim",
		Usage: "Digital logic simulator",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List sample circuits",
				Action: list,
			},
			runCommand(),
			benchCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "logicsim: %v\n", err)
		os.Exit(1)
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"circuit", "description"})
	for _, n := range sampleNames() {
		tbl.AppendRow(table.Row{n, samples[n].desc})
	}
	tbl.Render()
	return nil
}

func circuitFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  circuitKey,
		Usage: "Sample circuit name (see list)",
		Value: "counter",
	}
}
