package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/taniwha3/meshbond/internal/platform"
)

// healthCheckTargets mirrors the Failover Manager's probe targets
// (spec.md §4.E) so `test` reports the same reachability the daemon
// would observe.
var healthCheckTargets = []string{"8.8.8.8", "1.1.1.1"}

func runTest(args []string) {
	if err := doTest(args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func doTest(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	duration := fs.Duration("duration", 10*time.Second, "per-target probe timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		return fmt.Errorf("usage: meshbondctl test <interface> [--duration 10s]")
	}
	iface := remaining[0]

	port := platform.NewRealPort()
	ctx, cancel := context.WithTimeout(context.Background(), *duration*time.Duration(len(healthCheckTargets)))
	defer cancel()

	fmt.Fprintf(stdout, "Testing interface %s...\n", iface)
	anyReachable := false
	for _, target := range healthCheckTargets {
		result, err := port.Probe(ctx, iface, target, *duration)
		if err != nil {
			fmt.Fprintf(stdout, "  %-12s error: %v\n", target, err)
			continue
		}
		if result.Reachable {
			anyReachable = true
		}
		fmt.Fprintf(stdout, "  %-12s reachable=%v rtt=%.1fms\n", target, result.Reachable, result.RTTMs)
	}

	if !anyReachable {
		return fmt.Errorf("interface %s: no configured target was reachable", iface)
	}
	return nil
}
