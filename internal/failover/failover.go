// Package failover implements the Failover Manager (spec.md §4.E):
// per-interface health counters, the five-state hysteresis machine, and
// primary/backup selection. Grounded on the teacher's
// internal/health/health.go (Checker/threshold/ComponentStatus shape)
// and on
// _examples/original_source/mesh/mesh_network/failover/failover_manager.py
// (state transition rules and constants).
package failover

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taniwha3/meshbond/internal/meshmodel"
	"github.com/taniwha3/meshbond/internal/platform"
)

// State is one of the five failover-manager states.
type State string

const (
	StateNormal      State = "Normal"
	StateMonitoring  State = "Monitoring"
	StateFailingOver State = "FailingOver"
	StateRecovering  State = "Recovering"
	StateDegraded    State = "Degraded"
)

// Thresholds configures the hysteresis and probe cadence.
type Thresholds struct {
	FailoverThreshold  int           // consecutive failures to mark an interface failed (default 3)
	RecoveryThreshold  int           // consecutive successes to clear a failed interface (default 2)
	MonitoringInterval time.Duration // minimum gap between health checks per interface (default 10s)
}

// DefaultThresholds returns the spec.md §4.E defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FailoverThreshold:  3,
		RecoveryThreshold:  2,
		MonitoringInterval: 10 * time.Second,
	}
}

// healthCheckTargets are the two DNS-server anycasts probed per
// interface (spec.md §4.E).
var healthCheckTargets = []string{"8.8.8.8", "1.1.1.1"}

// healthCheckTimeout is the per-target probe deadline (spec.md §5).
const healthCheckTimeout = 5 * time.Second

// Manager owns the failed-set, primary/backups view, and event log.
// All of it is guarded by a single dedicated lock; external callers
// obtain snapshots by value (spec.md §5).
type Manager struct {
	mu sync.Mutex

	port       platform.Port
	thresholds Thresholds
	logger     *slog.Logger

	primary     string
	backups     []string
	failed      map[string]bool
	lastChecked map[string]time.Time
	state       State
	eventLog    meshmodel.EventLog
}

// New creates a Manager for the given primary/backup interface set.
func New(port platform.Port, primary string, backups []string, thresholds Thresholds, logger *slog.Logger) *Manager {
	return &Manager{
		port:        port,
		thresholds:  thresholds,
		logger:      logger,
		primary:     primary,
		backups:     backups,
		failed:      make(map[string]bool),
		lastChecked: make(map[string]time.Time),
		state:       StateNormal,
	}
}

// RunHealthChecks runs one monitoring tick (spec.md §4.E): for each
// interface whose last check is at least MonitoringInterval ago, probe
// both targets, apply the hysteresis rule, and re-evaluate state.
func (m *Manager) RunHealthChecks(ctx context.Context, interfaces []*meshmodel.Interface) {
	now := time.Now()

	for _, iface := range interfaces {
		m.mu.Lock()
		last, checked := m.lastChecked[iface.Name]
		due := !checked || now.Sub(last) >= m.thresholds.MonitoringInterval
		m.mu.Unlock()
		if !due {
			continue
		}

		healthy := m.checkConnectionHealth(ctx, iface.Name)

		m.mu.Lock()
		m.lastChecked[iface.Name] = now
		iface.RecordHealthCheck(healthy)
		m.applyHysteresis(iface)
		m.updateState(interfaces)
		m.mu.Unlock()
	}
}

// checkConnectionHealth probes both targets and reports healthy iff
// strictly more than half succeed.
func (m *Manager) checkConnectionHealth(ctx context.Context, name string) bool {
	successes := 0
	for _, target := range healthCheckTargets {
		result, err := m.port.Probe(ctx, name, target, healthCheckTimeout)
		if err == nil && result.Reachable {
			successes++
		}
	}
	return successes*2 > len(healthCheckTargets)
}

// applyHysteresis applies the failover/recovery threshold rules. Must
// be called with m.mu held.
func (m *Manager) applyHysteresis(iface *meshmodel.Interface) {
	name := iface.Name

	if iface.ConsecutiveFailures >= m.thresholds.FailoverThreshold && !m.failed[name] {
		m.failed[name] = true
		iface.Active = false
		m.eventLog.Append(meshmodel.FailoverEvent{
			Kind:      meshmodel.EventConnectionLost,
			Interface: name,
			Timestamp: time.Now(),
		})
		m.logger.Warn("failover: interface marked failed", "interface", name)

		if m.primary == name {
			m.selectNewPrimary()
		}
		return
	}

	if iface.ConsecutiveSuccesses >= m.thresholds.RecoveryThreshold && m.failed[name] {
		delete(m.failed, name)
		iface.Active = true
		m.eventLog.Append(meshmodel.FailoverEvent{
			Kind:      meshmodel.EventConnectionRestored,
			Interface: name,
			Timestamp: time.Now(),
		})
		m.logger.Info("failover: interface restored", "interface", name)
		m.selectNewPrimary()
	}
}

// selectNewPrimary picks the first backup not in the failed set. Must
// be called with m.mu held.
func (m *Manager) selectNewPrimary() {
	if !m.failed[m.primary] {
		return
	}
	for _, candidate := range m.backups {
		if !m.failed[candidate] {
			m.primary = candidate
			return
		}
	}
}

// updateState recomputes the overall state from active-non-failed count
// vs total (spec.md §4.E). Must be called with m.mu held.
func (m *Manager) updateState(interfaces []*meshmodel.Interface) {
	total := len(interfaces)
	active := 0
	for _, iface := range interfaces {
		if iface.Active && !m.failed[iface.Name] {
			active++
		}
	}

	var next State
	switch {
	case active == 0:
		next = StateDegraded
	case active == total:
		next = StateNormal
	case active == 1:
		next = StateMonitoring
	default:
		next = StateNormal
	}

	if next != m.state {
		if next == StateDegraded {
			m.logger.Error("failover: entering degraded mode, all interfaces failed")
		} else {
			m.logger.Info("failover: state transition", "from", m.state, "to", next)
		}
	}
	m.state = next
}

// ManualFailover forces from into the failed set, to out of it, and
// sets primary to to (spec.md §4.E).
func (m *Manager) ManualFailover(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed[from] = true
	delete(m.failed, to)
	m.primary = to
	m.eventLog.Append(meshmodel.FailoverEvent{
		Kind:      meshmodel.EventManualFailover,
		Interface: to,
		Timestamp: time.Now(),
		Detail:    "manual failover from " + from,
	})
}

// Status is a point-in-time snapshot of the failover manager's state.
type Status struct {
	State   State
	Primary string
	Backups []string
	Failed  []string
	Events  []meshmodel.FailoverEvent
}

// GetStatus returns a snapshot by value.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := make([]string, 0, len(m.failed))
	for name := range m.failed {
		failed = append(failed, name)
	}

	return Status{
		State:   m.state,
		Primary: m.primary,
		Backups: append([]string(nil), m.backups...),
		Failed:  failed,
		Events:  m.eventLog.Recent(),
	}
}
