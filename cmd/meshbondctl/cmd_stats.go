package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

type statsResponse struct {
	AggregationMode string             `json:"aggregation_mode"`
	Weights         map[string]float64 `json:"weights"`
	FailoverState   string             `json:"failover_state"`
	Primary         string             `json:"primary"`
	Backups         []string           `json:"backups"`
	Failed          []string           `json:"failed"`
}

func runStats(args []string) {
	if err := doStats(args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func doStats(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "meshbond control API address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var stats statsResponse
	if err := getJSON(*addr, "/stats", &stats); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Aggregation mode: %s\n", stats.AggregationMode)
	fmt.Fprintf(stdout, "Weights:\n")
	for iface, weight := range stats.Weights {
		fmt.Fprintf(stdout, "  %-10s %.3f\n", iface, weight)
	}
	fmt.Fprintf(stdout, "Failover state:   %s\n", stats.FailoverState)
	fmt.Fprintf(stdout, "Primary:          %s\n", stats.Primary)
	fmt.Fprintf(stdout, "Backups:          %v\n", stats.Backups)
	if len(stats.Failed) > 0 {
		fmt.Fprintf(stdout, "Failed:           %v\n", stats.Failed)
	}
	return nil
}
