// Package metrics implements the per-interface bandwidth/latency/jitter/
// loss sampling pipeline, rolling history, and report generation
// (spec.md §4.B). The sampling shape (two latency targets, five jitter
// probes, ten loss probes) is grounded on
// _examples/original_source/mesh/mesh_network/utils/metrics.py; the
// report/recommendation structure is grounded on the teacher's
// internal/monitoring/metrics.go.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/taniwha3/meshbond/internal/meshmodel"
	"github.com/taniwha3/meshbond/internal/platform"
)

// latencyTargets are the two reachability targets latency/loss samples
// are probed against.
var latencyTargets = []string{"8.8.8.8", "1.1.1.1"}

// classBandwidthMbps is the class-based bandwidth estimate table used
// when no true-throughput override port is configured.
var classBandwidthMbps = map[meshmodel.Kind]float64{
	meshmodel.KindWired:    100,
	meshmodel.KindWireless: 50,
	meshmodel.KindCellular: 15,
	meshmodel.KindUnknown:  10,
}

const (
	probeTimeout   = 2 * time.Second
	jitterProbes   = 5
	jitterInterval = 100 * time.Millisecond
	lossProbes     = 10
)

// Collector samples interface quality and produces performance reports.
type Collector struct {
	port   platform.Port
	logger *slog.Logger
}

// New creates a Collector against the given Platform Port.
func New(port platform.Port, logger *slog.Logger) *Collector {
	return &Collector{port: port, logger: logger}
}

// Sample measures bandwidth/latency/jitter/loss for one interface and
// pushes the result into its rolling history.
func (c *Collector) Sample(ctx context.Context, iface *meshmodel.Interface) meshmodel.Quality {
	q := meshmodel.Quality{
		BandwidthMbps:  c.measureBandwidth(iface),
		LastMeasuredAt: time.Now(),
	}
	q.LatencyMs = c.measureLatency(ctx, iface.Name)
	q.JitterMs = c.measureJitter(ctx, iface.Name)
	q.LossPct = c.measureLoss(ctx, iface.Name)

	iface.Quality = q
	iface.History.Push(q)
	return q
}

// measureBandwidth returns the class-based estimate for the interface's
// kind (spec.md §4.B: "implementation-defined... a class-based
// estimate keyed on kind with a pluggable override port").
func (c *Collector) measureBandwidth(iface *meshmodel.Interface) float64 {
	if bw, ok := classBandwidthMbps[iface.Kind]; ok {
		return bw
	}
	return classBandwidthMbps[meshmodel.KindUnknown]
}

// measureLatency probes both targets once and returns the arithmetic
// mean of successful RTTs, or the 1000ms unreachable sentinel if none
// succeed.
func (c *Collector) measureLatency(ctx context.Context, name string) float64 {
	var successes []float64
	for _, target := range latencyTargets {
		result, err := c.port.Probe(ctx, name, target, probeTimeout)
		if err != nil || !result.Reachable {
			continue
		}
		successes = append(successes, result.RTTMs)
	}
	if len(successes) == 0 {
		return meshmodel.LatencySentinelMs
	}
	return stat.Mean(successes, nil)
}

// measureJitter runs five back-to-back probes spaced ~100ms and returns
// the standard deviation of successful RTTs, or 0 if fewer than two
// succeed.
func (c *Collector) measureJitter(ctx context.Context, name string) float64 {
	var successes []float64
	for i := 0; i < jitterProbes; i++ {
		result, err := c.port.Probe(ctx, name, latencyTargets[0], probeTimeout)
		if err == nil && result.Reachable {
			successes = append(successes, result.RTTMs)
		}
		if i < jitterProbes-1 {
			select {
			case <-ctx.Done():
				return 0
			case <-time.After(jitterInterval):
			}
		}
	}
	if len(successes) < 2 {
		return 0
	}
	return stat.StdDev(successes, nil)
}

// measureLoss sends ten probes and reports the percentage that failed.
func (c *Collector) measureLoss(ctx context.Context, name string) float64 {
	successes := 0
	for i := 0; i < lossProbes; i++ {
		result, err := c.port.Probe(ctx, name, latencyTargets[0], probeTimeout)
		if err == nil && result.Reachable {
			successes++
		}
	}
	return float64(lossProbes-successes) / float64(lossProbes) * 100
}

// Report is the structured performance report spec.md §4.B describes.
type Report struct {
	TotalBandwidthMbps float64
	AverageLatencyMs   float64
	TotalNodes         int
	Interfaces         map[string]InterfaceReport
	Recommendations    []string
}

// InterfaceReport is the current/average/peak block for one interface.
type InterfaceReport struct {
	Current meshmodel.Quality
	Average meshmodel.Quality
	Peak    meshmodel.Quality
}

// GenerateReport builds a performance report from the local node's
// interfaces and the current peer count.
func (c *Collector) GenerateReport(node *meshmodel.Node, peerCount int) Report {
	report := Report{
		TotalNodes: 1 + peerCount,
		Interfaces: make(map[string]InterfaceReport, len(node.Interfaces)),
	}

	var totalBandwidth float64
	var positiveLatencies []float64

	for _, iface := range node.Interfaces {
		report.Interfaces[iface.Name] = InterfaceReport{
			Current: iface.Quality,
			Average: iface.History.Average(),
			Peak:    iface.History.Peak(),
		}
		totalBandwidth += iface.Quality.BandwidthMbps
		if iface.Quality.LatencyMs > 0 {
			positiveLatencies = append(positiveLatencies, iface.Quality.LatencyMs)
		}
	}

	report.TotalBandwidthMbps = totalBandwidth
	if len(positiveLatencies) > 0 {
		report.AverageLatencyMs = stat.Mean(positiveLatencies, nil)
	}

	report.Recommendations = c.recommendations(node, report)
	return report
}

// recommendations emits human-readable rule-based suggestions
// (spec.md §4.B).
func (c *Collector) recommendations(node *meshmodel.Node, report Report) []string {
	var recs []string

	for _, iface := range node.Interfaces {
		if iface.Quality.LatencyMs > 100 {
			recs = append(recs, fmt.Sprintf("%s: latency high, consider failing over", iface.Name))
		}
		if iface.Quality.LossPct > 5 {
			recs = append(recs, fmt.Sprintf("%s: packet loss elevated, investigate connection quality", iface.Name))
		}
	}
	if report.TotalNodes < 2 {
		recs = append(recs, "low mesh redundancy: fewer than two nodes visible")
	}
	if report.AverageLatencyMs > 50 {
		recs = append(recs, "average latency elevated, optimize routing")
	}
	return recs
}
