package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// starterConfig is a minimal, commented configuration matching
// internal/config.Config's YAML schema (spec.md §6).
const starterConfig = `node_discovery:
  port: 9999
  broadcast_interval: 5
  node_timeout: 60
  group: MESH_NETWORK_GROUP

link_aggregation:
  mode: load_balance       # failover | load_balance | adaptive
  max_queue_size: 1000
  rebalance_interval: 30

failover:
  threshold: 3
  recovery_threshold: 2
  monitoring_interval: 10

interfaces:
  primary: eth0
  backups:
    - wlan0

logging:
  level: info
  format: console
`

func runConfig(args []string) {
	if err := doConfig(args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func doConfig(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	output := fs.String("output", "", "write the starter config to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output == "" {
		_, err := io.WriteString(stdout, starterConfig)
		return err
	}

	if err := os.WriteFile(*output, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", *output, err)
	}
	fmt.Fprintf(stdout, "Wrote starter config to %s\n", *output)
	return nil
}
