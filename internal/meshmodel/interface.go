// Package meshmodel holds the shared data model for the mesh bonding
// engine: interface records, node records, the peer table, bounded send
// queues, rolling quality history, and the failover event log.
package meshmodel

import "time"

// Kind classifies a network interface by transport medium.
type Kind string

const (
	KindWired    Kind = "wired"
	KindWireless Kind = "wireless"
	KindCellular Kind = "cellular"
	KindUnknown  Kind = "unknown"
)

// Quality is a point-in-time measurement of an interface's performance.
type Quality struct {
	BandwidthMbps  float64
	LatencyMs      float64
	JitterMs       float64
	LossPct        float64
	LastMeasuredAt time.Time
}

// Interface is the local record for one network interface.
type Interface struct {
	Name           string
	Kind           Kind
	Up             bool
	Address        string
	HWAddress      string
	SignalStrength *int // nil when not applicable (wired) or unavailable

	Quality Quality

	DataUsedMB float64
	DataCapMB  float64 // 0 = unlimited

	PacketsSent uint64
	BytesSent   uint64

	Active               bool // admin/operational up and not failed out
	ConsecutiveFailures  int
	ConsecutiveSuccesses int

	History *QualityHistory
}

// NewInterface creates an interface record with a fresh rolling history.
func NewInterface(name string, kind Kind) *Interface {
	return &Interface{
		Name:    name,
		Kind:    kind,
		History: NewQualityHistory(qualityHistoryCapacity),
	}
}

// Qualifies reports whether the interface may be selected by weighted
// aggregation: active, positive bandwidth, and latency below the
// unreachable sentinel.
func (i *Interface) Qualifies() bool {
	return i.Active && i.Quality.BandwidthMbps > 0 && i.Quality.LatencyMs < LatencySentinelMs
}

// RecordHealthCheck applies a health-check outcome, keeping the
// consecutive-failure and consecutive-success counters mutually
// exclusive (invariant 5 of the data model).
func (i *Interface) RecordHealthCheck(healthy bool) {
	if healthy {
		i.ConsecutiveSuccesses++
		i.ConsecutiveFailures = 0
	} else {
		i.ConsecutiveFailures++
		i.ConsecutiveSuccesses = 0
	}
}

// DataCapExceeded reports whether usage has met or exceeded an interface's
// configured data cap. A zero cap means unlimited and never exceeds.
func (i *Interface) DataCapExceeded() bool {
	if i.DataCapMB <= 0 {
		return false
	}
	return i.DataUsedMB >= i.DataCapMB
}

// LatencySentinelMs is reported when no latency probe succeeds; it also
// disqualifies an interface from weighted selection.
const LatencySentinelMs = 1000.0
