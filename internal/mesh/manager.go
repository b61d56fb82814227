// Package mesh implements the Mesh Manager (spec.md §4.F): it owns the
// shared local-node/peer-table/active-connection state and runs the
// four control loops (discovery, monitoring, optimization,
// housekeeping). Grounded on the teacher's (superseded) cmd/tidewatch
// main.go orchestration style — context.WithCancel + sync.WaitGroup +
// one goroutine per loop — and on
// _examples/original_source/mesh/mesh_network/core/mesh_manager.py for
// loop cadences and startup/shutdown sequencing.
package mesh

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/taniwha3/meshbond/internal/aggregator"
	"github.com/taniwha3/meshbond/internal/discovery"
	"github.com/taniwha3/meshbond/internal/failover"
	"github.com/taniwha3/meshbond/internal/health"
	"github.com/taniwha3/meshbond/internal/meshmodel"
	"github.com/taniwha3/meshbond/internal/metrics"
	"github.com/taniwha3/meshbond/internal/platform"
)

const (
	discoveryInterval   = 5 * time.Second
	monitoringInterval  = 10 * time.Second
	optimizationInterval = 30 * time.Second
	housekeepingInterval = 1 * time.Second
)

// Config configures a Manager.
type Config struct {
	Group              string
	DiscoveryPort      int
	MaxQueueSize       int
	AggregationMode    aggregator.Mode
	Primary            string
	Backups            []string
	FailoverThresholds failover.Thresholds
}

// Manager owns the shared mutable state and the four control loops.
type Manager struct {
	cfg    Config
	port   platform.Port
	logger *slog.Logger

	discovery *discovery.Discovery
	metrics   *metrics.Collector
	aggregate *aggregator.Aggregator
	failover  *failover.Manager
	health    *health.Checker

	nodeMu sync.RWMutex
	local  *meshmodel.Node
	peers  *meshmodel.PeerTable

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a Manager. Call Start to run its control loops.
func New(port platform.Port, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		port:   port,
		logger: logger,
		peers:  meshmodel.NewPeerTable(),
	}
}

// Start runs the startup sequence (spec.md §4.F: enumerate interfaces,
// measure each once, build the local node record, initialize the
// aggregator, start the four loops) and returns once the loops are
// running.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.metrics = metrics.New(m.port, m.logger)
	node, err := m.buildLocalNode(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("mesh manager startup: %w", err)
	}
	m.nodeMu.Lock()
	m.local = node
	m.nodeMu.Unlock()

	discoveryCfg := discovery.Config{
		Port:         m.cfg.DiscoveryPort,
		Group:        m.cfg.Group,
		ListenWindow: discovery.ListenWindow,
	}
	m.discovery = discovery.New(m.port, discoveryCfg, m.logger)
	m.aggregate = aggregator.New(node.Interfaces, aggregator.Config{
		MaxQueueSize: m.cfg.MaxQueueSize,
		Mode:         m.cfg.AggregationMode,
	}, m.logger)
	m.failover = failover.New(m.port, m.cfg.Primary, m.cfg.Backups, m.cfg.FailoverThresholds, m.logger)

	m.running = true

	m.wg.Add(4)
	go m.runLoop(ctx, "discovery", discoveryInterval, m.discoveryTick)
	go m.runLoop(ctx, "monitoring", monitoringInterval, m.monitoringTick)
	go m.runLoop(ctx, "optimization", optimizationInterval, m.optimizationTick)
	go m.runLoop(ctx, "housekeeping", housekeepingInterval, m.housekeepingTick)

	m.logger.Info("mesh manager started", "node_id", node.NodeID, "interfaces", node.InterfaceNames())
	return nil
}

// Stop signals every loop to exit and waits for them to return. Loops
// observe shutdown within one tick of their own cadence (spec.md §4.F).
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	m.nodeMu.Lock()
	m.running = false
	m.nodeMu.Unlock()
}

// buildLocalNode enumerates interfaces, measures each once, and builds
// the local node record (spec.md §4.F startup sequence).
func (m *Manager) buildLocalNode(ctx context.Context) (*meshmodel.Node, error) {
	descriptors, err := m.port.EnumerateInterfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}

	hostname, _ := os.Hostname()
	hwAddress := ""
	if len(descriptors) > 0 {
		hwAddress = descriptors[0].HWAddress
	}
	nodeID := discovery.NodeID(hostname, hwAddress)

	localAddr, err := m.port.LocalAddress()
	if err != nil {
		m.logger.Warn("local address unavailable", "error", err)
	}

	node := meshmodel.NewNode(nodeID)
	node.Address = localAddr
	node.UpdatedAt = time.Now()

	for _, d := range descriptors {
		iface := meshmodel.NewInterface(d.Name, d.Kind)
		iface.Address = d.Address
		iface.HWAddress = d.HWAddress
		iface.SignalStrength = m.port.SignalStrength(d.Name)

		up, err := m.port.IsUp(ctx, d.Name)
		if err == nil {
			iface.Up = up
			iface.Active = up
		}

		m.metrics.Sample(ctx, iface)
		node.Interfaces = append(node.Interfaces, iface)
		node.Bandwidth[d.Name] = iface.Quality.BandwidthMbps
		node.Latency[d.Name] = iface.Quality.LatencyMs
	}

	return node, nil
}

// runLoop is the generic per-loop supervisor: run tick once per interval,
// starting one interval after the loop begins, until ctx is cancelled.
// Each tick logs its own errors and the loop continues (spec.md §7
// propagation policy).
func (m *Manager) runLoop(ctx context.Context, name string, interval time.Duration, tick func(context.Context)) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("loop stopped", "loop", name)
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// SetHealth attaches a health.Checker that the control loops report
// their tick outcomes and the Failover Manager's state into. Must be
// called before Start to observe the startup sequence.
func (m *Manager) SetHealth(checker *health.Checker) {
	m.health = checker
}

// Aggregator exposes the live aggregator for callers that need to
// enqueue/select directly (e.g. the daemon's /stats handler).
func (m *Manager) Aggregator() *aggregator.Aggregator { return m.aggregate }

// Failover exposes the live failover manager for manual override calls.
func (m *Manager) Failover() *failover.Manager { return m.failover }

// Platform exposes the underlying Platform Port.
func (m *Manager) Platform() platform.Port { return m.port }
