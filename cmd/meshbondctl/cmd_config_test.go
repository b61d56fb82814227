package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDoConfigStdout(t *testing.T) {
	var buf bytes.Buffer
	if err := doConfig(nil, &buf); err != nil {
		t.Fatalf("doConfig returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "interfaces:") {
		t.Errorf("expected starter config in output, got: %s", buf.String())
	}
}

func TestDoConfigOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var buf bytes.Buffer
	if err := doConfig([]string{"--output", path}, &buf); err != nil {
		t.Fatalf("doConfig returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.Contains(string(data), "node_discovery:") {
		t.Errorf("expected written config to contain node_discovery section, got: %s", data)
	}
}
