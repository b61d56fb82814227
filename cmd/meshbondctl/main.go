// Command meshbondctl is the operator CLI for the meshbond daemon: it
// queries the daemon's control/health HTTP surface and runs one-off
// interface probes directly against the Platform Port.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "status":
		runStatus(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	case "logs":
		runLogs(os.Args[2:])
	case "test":
		runTest(os.Args[2:])
	case "failover":
		runFailover(os.Args[2:])
	case "config":
		runConfig(os.Args[2:])
	case "version", "--version":
		printVersion()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("meshbondctl %s (%s)\n", version, commit)
}

func printUsage() {
	fmt.Println("Usage: meshbondctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status                                   Show the local node and peer table")
	fmt.Println("  stats                                     Show aggregation weights and failover state")
	fmt.Println("  logs [--follow] [--level LEVEL]           Show daemon log output")
	fmt.Println("  test <interface> [--duration 10s]         Probe one interface's reachability")
	fmt.Println("  failover <from> <to>                      Manually force a failover")
	fmt.Println("  config [--output path]                    Print or write a starter config")
	fmt.Println("  version                                   Print version and exit")
}
