package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

type statusResponse struct {
	Local *struct {
		NodeID     string   `json:"NodeID"`
		Address    string   `json:"Address"`
		Interfaces []string `json:"Interfaces"`
	} `json:"local"`
	Peers            int      `json:"peers"`
	ActiveInterfaces []string `json:"active_interfaces"`
	Running          bool     `json:"running"`
}

func runStatus(args []string) {
	if err := doStatus(args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}
}

func doStatus(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "meshbond control API address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var status statusResponse
	if err := getJSON(*addr, "/status", &status); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Running:  %v\n", status.Running)
	fmt.Fprintf(stdout, "Peers:    %d\n", status.Peers)
	if status.Local != nil {
		fmt.Fprintf(stdout, "Node ID:  %s\n", status.Local.NodeID)
		fmt.Fprintf(stdout, "Address:  %s\n", status.Local.Address)
		fmt.Fprintf(stdout, "Interfaces: %v\n", status.Local.Interfaces)
	}
	fmt.Fprintf(stdout, "Active:   %v\n", status.ActiveInterfaces)
	return nil
}
