package mesh

import (
	"context"
	"time"
)

// discoveryTick runs one discovery pass, merges valid peers into the
// peer table, and evicts anything past the TTL (spec.md §4.F).
func (m *Manager) discoveryTick(ctx context.Context) {
	m.nodeMu.RLock()
	local := m.local
	m.nodeMu.RUnlock()
	if local == nil {
		return
	}

	localSnapshot := local.Snapshot()
	peers, err := m.discovery.RunPass(ctx, &localSnapshot)
	if err != nil {
		m.logger.Warn("discovery pass failed", "error", err)
	}

	now := time.Now()
	for _, peer := range peers {
		m.peers.Touch(peer, now)
	}
	evicted := m.peers.EvictStale(now)
	if len(evicted) > 0 {
		m.logger.Debug("discovery: evicted stale peers", "count", len(evicted), "ids", evicted)
	}

	if m.health != nil {
		m.health.UpdateDiscoveryStatus(now, discoveryInterval, m.peers.Len(), err)
	}
}

// monitoringTick refreshes local interface quality, runs failover
// health checks against the local interface set (spec.md §4.F), and
// logs a warning for each interface whose data cap is reached.
func (m *Manager) monitoringTick(ctx context.Context) {
	m.nodeMu.Lock()
	local := m.local
	m.nodeMu.Unlock()
	if local == nil {
		return
	}

	for _, iface := range local.Interfaces {
		m.metrics.Sample(ctx, iface)
	}

	m.nodeMu.Lock()
	for _, iface := range local.Interfaces {
		local.Bandwidth[iface.Name] = iface.Quality.BandwidthMbps
		local.Latency[iface.Name] = iface.Quality.LatencyMs
	}
	local.UpdatedAt = time.Now()
	m.nodeMu.Unlock()

	m.failover.RunHealthChecks(ctx, local.Interfaces)

	for _, iface := range local.Interfaces {
		if iface.DataCapExceeded() {
			m.logger.Warn("monitoring: interface data cap reached", "interface", iface.Name)
		}
	}

	if m.health != nil {
		m.health.UpdateLoopStatus("monitoring", time.Now(), monitoringInterval, nil)
		status := m.failover.GetStatus()
		m.health.UpdateFailoverStatus(string(status.State), status.Primary, len(status.Failed))
	}
}

// optimizationTick re-derives aggregation weights/mode from the current
// local interface state and logs a concise load summary (spec.md §4.F).
func (m *Manager) optimizationTick(_ context.Context) {
	m.nodeMu.RLock()
	local := m.local
	m.nodeMu.RUnlock()
	if local == nil {
		return
	}

	m.aggregate.Refresh(local.Interfaces)
	m.logger.Info("optimization: weights recomputed",
		"mode", m.aggregate.Mode(),
		"weights", m.aggregate.Weights(),
	)

	if m.health != nil {
		m.health.UpdateLoopStatus("optimization", time.Now(), optimizationInterval, nil)
	}
}

// housekeepingTick is a reserved extension point; it currently
// publishes nothing beyond what GetStatus already exposes on demand
// (spec.md §4.F: "process pending operations, publish a global metrics
// snapshot").
func (m *Manager) housekeepingTick(_ context.Context) {
	now := time.Now()
	if m.health != nil {
		m.health.UpdateLoopStatus("housekeeping", now, housekeepingInterval, nil)
	}
}

// Status is a point-in-time snapshot of the Mesh Manager's shared state
// (spec.md §4.F status query: local node snapshot, active connection
// list, running flag). Peers carries only the peer count, not the peer
// records themselves.
type Status struct {
	Local            *LocalNodeStatus
	Peers            int
	ActiveInterfaces []string
	Running          bool
}

// LocalNodeStatus is the published view of the local node record.
type LocalNodeStatus struct {
	NodeID     string
	Address    string
	Interfaces []string
}

// GetStatus returns a consistent snapshot of the manager's state.
func (m *Manager) GetStatus() Status {
	m.nodeMu.RLock()
	defer m.nodeMu.RUnlock()

	status := Status{Peers: m.peers.Len(), Running: m.running}
	if m.local == nil {
		return status
	}

	status.Local = &LocalNodeStatus{
		NodeID:     m.local.NodeID,
		Address:    m.local.Address,
		Interfaces: m.local.InterfaceNames(),
	}
	for _, iface := range m.local.Interfaces {
		if iface.Active {
			status.ActiveInterfaces = append(status.ActiveInterfaces, iface.Name)
		}
	}
	return status
}
