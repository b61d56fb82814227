package aggregator

import "github.com/taniwha3/meshbond/internal/meshmodel"

// Select picks an interface for a packet of packetSize bytes, dispatching
// to the configured mode (spec.md §4.D). The local node's ordered
// interface slice is what makes tie-breaking deterministic: all three
// modes walk a.snapshot in the node's registration order, so ties always
// resolve to the earliest-registered interface.
func (a *Aggregator) Select(packetSize int) (string, error) {
	a.mu.RLock()
	mode := a.mode
	snapshot := a.snapshot
	weights := a.weights
	a.mu.RUnlock()

	switch mode {
	case ModeFailover:
		return selectFailover(snapshot)
	case ModeAdaptive:
		if packetSize == 0 {
			return selectLoadBalance(snapshot, weights, a.rng)
		}
		return selectAdaptive(snapshot, packetSize)
	default:
		return selectLoadBalance(snapshot, weights, a.rng)
	}
}

// selectFailover returns the first active interface in iteration order.
func selectFailover(snapshot []*meshmodel.Interface) (string, error) {
	for _, iface := range snapshot {
		if iface.Active {
			return iface.Name, nil
		}
	}
	return "", ErrNoRoute
}
