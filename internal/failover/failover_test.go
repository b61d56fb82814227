package failover

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/taniwha3/meshbond/internal/meshmodel"
	"github.com/taniwha3/meshbond/internal/platform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastThresholds() Thresholds {
	t := DefaultThresholds()
	t.MonitoringInterval = 0 // allow back-to-back checks within one test
	return t
}

func TestFailoverHysteresisThreeFailuresThenTwoSuccesses(t *testing.T) {
	port := platform.NewFakePort()
	eth0 := meshmodel.NewInterface("eth0", meshmodel.KindWired)
	eth0.Active = true

	m := New(port, "eth0", []string{"wlan0"}, fastThresholds(), discardLogger())

	port.ProbeResults["eth0/8.8.8.8"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["eth0/1.1.1.1"] = platform.ProbeResult{Reachable: false}

	for i := 0; i < 3; i++ {
		m.RunHealthChecks(context.Background(), []*meshmodel.Interface{eth0})
	}

	status := m.GetStatus()
	if len(status.Failed) != 1 || status.Failed[0] != "eth0" {
		t.Fatalf("expected eth0 in failed set after 3 failures, got %v", status.Failed)
	}
	lostEvents := countEvents(status.Events, meshmodel.EventConnectionLost)
	if lostEvents != 1 {
		t.Fatalf("expected exactly one connection_lost event, got %d", lostEvents)
	}

	port.ProbeResults["eth0/8.8.8.8"] = platform.ProbeResult{Reachable: true, RTTMs: 5}
	port.ProbeResults["eth0/1.1.1.1"] = platform.ProbeResult{Reachable: true, RTTMs: 5}

	for i := 0; i < 2; i++ {
		m.RunHealthChecks(context.Background(), []*meshmodel.Interface{eth0})
	}

	status = m.GetStatus()
	if len(status.Failed) != 0 {
		t.Fatalf("expected eth0 cleared from failed set, got %v", status.Failed)
	}
	restoredEvents := countEvents(status.Events, meshmodel.EventConnectionRestored)
	if restoredEvents != 1 {
		t.Fatalf("expected exactly one connection_restored event, got %d", restoredEvents)
	}
}

func TestManualFailoverRoundTrip(t *testing.T) {
	port := platform.NewFakePort()
	m := New(port, "eth0", []string{"wlan0"}, DefaultThresholds(), discardLogger())

	m.ManualFailover("eth0", "wlan0")
	status := m.GetStatus()
	if status.Primary != "wlan0" {
		t.Fatalf("expected primary wlan0 after failover, got %s", status.Primary)
	}

	m.ManualFailover("wlan0", "eth0")
	status = m.GetStatus()
	if status.Primary != "eth0" {
		t.Fatalf("expected primary restored to eth0, got %s", status.Primary)
	}
	if contains(status.Failed, "eth0") {
		t.Fatalf("expected eth0 cleared from failed set, got %v", status.Failed)
	}
}

func TestDegradedModeWhenAllInterfacesFailed(t *testing.T) {
	port := platform.NewFakePort()
	port.ProbeResults["eth0/8.8.8.8"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["eth0/1.1.1.1"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["wlan0/8.8.8.8"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["wlan0/1.1.1.1"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["ppp0/8.8.8.8"] = platform.ProbeResult{Reachable: false}
	port.ProbeResults["ppp0/1.1.1.1"] = platform.ProbeResult{Reachable: false}

	eth0 := meshmodel.NewInterface("eth0", meshmodel.KindWired)
	wlan0 := meshmodel.NewInterface("wlan0", meshmodel.KindWireless)
	ppp0 := meshmodel.NewInterface("ppp0", meshmodel.KindCellular)
	interfaces := []*meshmodel.Interface{eth0, wlan0, ppp0}

	m := New(port, "eth0", []string{"wlan0", "ppp0"}, fastThresholds(), discardLogger())

	for i := 0; i < 3; i++ {
		m.RunHealthChecks(context.Background(), interfaces)
	}

	status := m.GetStatus()
	if status.State != StateDegraded {
		t.Fatalf("expected Degraded state once all interfaces failed, got %v", status.State)
	}
	if len(status.Failed) != 3 {
		t.Fatalf("expected all three interfaces failed, got %v", status.Failed)
	}
}

func countEvents(events []meshmodel.FailoverEvent, kind meshmodel.FailoverEventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
