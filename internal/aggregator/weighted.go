package aggregator

import (
	"math/rand"

	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// selectLoadBalance performs a weighted-random draw over qualifying
// interfaces. If the qualified set is non-empty but total weight is 0,
// the first qualified interface (in iteration order) is returned
// instead (spec.md §4.D).
func selectLoadBalance(snapshot []*meshmodel.Interface, weights map[string]float64, rng *rand.Rand) (string, error) {
	if len(weights) == 0 {
		return "", ErrNoRoute
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		for _, iface := range snapshot {
			if _, ok := weights[iface.Name]; ok {
				return iface.Name, nil
			}
		}
		return "", ErrNoRoute
	}

	draw := rng.Float64() * total
	var cumulative float64
	for _, iface := range snapshot {
		w, ok := weights[iface.Name]
		if !ok {
			continue
		}
		cumulative += w
		if draw < cumulative {
			return iface.Name, nil
		}
	}
	// Floating-point rounding: fall back to the last qualifying interface
	// in iteration order.
	for i := len(snapshot) - 1; i >= 0; i-- {
		if _, ok := weights[snapshot[i].Name]; ok {
			return snapshot[i].Name, nil
		}
	}
	return "", ErrNoRoute
}

// selectAdaptive picks the active interface with maximum bandwidth for
// packets over 1000 bytes, otherwise the active interface with minimum
// latency. Ties resolve to iteration order (spec.md §9).
func selectAdaptive(snapshot []*meshmodel.Interface, packetSize int) (string, error) {
	var best *meshmodel.Interface

	if packetSize > 1000 {
		for _, iface := range snapshot {
			if !iface.Active {
				continue
			}
			if best == nil || iface.Quality.BandwidthMbps > best.Quality.BandwidthMbps {
				best = iface
			}
		}
	} else {
		for _, iface := range snapshot {
			if !iface.Active {
				continue
			}
			if best == nil || iface.Quality.LatencyMs < best.Quality.LatencyMs {
				best = iface
			}
		}
	}

	if best == nil {
		return "", ErrNoRoute
	}
	return best.Name, nil
}
