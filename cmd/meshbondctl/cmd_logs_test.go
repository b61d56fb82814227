package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLogFile(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "meshbond.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}
	return path
}

func TestDoLogsShowsTrailingLines(t *testing.T) {
	path := writeLogFile(t, []string{
		"level=INFO msg=\"starting meshbond\"",
		"level=INFO msg=\"mesh manager started\"",
		"level=ERROR msg=\"discovery pass failed\"",
	})

	var buf bytes.Buffer
	if err := doLogs([]string{"--file", path}, &buf); err != nil {
		t.Fatalf("doLogs returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mesh manager started") {
		t.Errorf("expected log output to contain all lines, got: %s", out)
	}
}

func TestDoLogsFiltersByLevel(t *testing.T) {
	path := writeLogFile(t, []string{
		"level=INFO msg=\"starting meshbond\"",
		"level=ERROR msg=\"discovery pass failed\"",
	})

	var buf bytes.Buffer
	if err := doLogs([]string{"--file", path, "--level", "error"}, &buf); err != nil {
		t.Fatalf("doLogs returned error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "starting meshbond") {
		t.Errorf("expected INFO line to be filtered out, got: %s", out)
	}
	if !strings.Contains(out, "discovery pass failed") {
		t.Errorf("expected ERROR line to be present, got: %s", out)
	}
}

func TestDoLogsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := doLogs([]string{"--file", "/nonexistent/meshbond.log"}, &buf); err == nil {
		t.Fatal("expected error for missing log file")
	}
}

func TestDoLogsTailLimitsLines(t *testing.T) {
	lines := make([]string, 500)
	for i := range lines {
		lines[i] = "level=INFO msg=\"tick\""
	}
	lines[499] = "level=INFO msg=\"final line\""
	path := writeLogFile(t, lines)

	var buf bytes.Buffer
	if err := doLogs([]string{"--file", path, "--lines", "10"}, &buf); err != nil {
		t.Fatalf("doLogs returned error: %v", err)
	}

	out := buf.String()
	count := strings.Count(out, "\n")
	if count != 10 {
		t.Errorf("expected exactly 10 lines, got %d", count)
	}
	if !strings.Contains(out, "final line") {
		t.Errorf("expected final line to be included in tail, got: %s", out)
	}
}
