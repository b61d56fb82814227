// Package aggregator implements the Link Aggregator (spec.md §4.D):
// weight computation, mode selection, per-packet interface selection,
// and bounded per-interface send queues. Grounded on
// _examples/original_source/mesh/mesh_network/aggregation/link_aggregator.py.
package aggregator

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// Mode selects the aggregation policy.
type Mode string

const (
	ModeFailover     Mode = "failover"
	ModeLoadBalance  Mode = "load_balance"
	ModeAdaptive     Mode = "adaptive"
)

// ErrNoRoute is returned when selection finds no usable interface.
var ErrNoRoute = errors.New("no route: no qualifying interface")

// Aggregator owns per-interface send queues and the current weight map,
// recomputed on each optimization tick against a snapshot of the local
// node (spec.md §9: the aggregator never mutates the node record it
// reads off of).
type Aggregator struct {
	mu             sync.RWMutex
	mode           Mode
	explicitMode   bool // true once the caller configures adaptive explicitly
	weights        map[string]float64
	snapshot       []*meshmodel.Interface // ordered, matches node iteration order
	queues         map[string]*meshmodel.SendQueue
	maxQueueSize   int
	rng            *rand.Rand
	logger         *slog.Logger
}

// Config configures an Aggregator.
type Config struct {
	MaxQueueSize int
	Mode         Mode // empty = automatic; ModeAdaptive pins adaptive explicitly
}

// New creates an Aggregator. interfaces establishes the fixed, ordered
// interface set the aggregator manages for the lifetime of the process
// (send queues are created here and destroyed only on shutdown, per
// spec.md §3's lifecycle rule).
func New(interfaces []*meshmodel.Interface, cfg Config, logger *slog.Logger) *Aggregator {
	maxQueueSize := cfg.MaxQueueSize
	if maxQueueSize <= 0 {
		maxQueueSize = meshmodel.DefaultMaxQueueSize
	}

	a := &Aggregator{
		mode:         ModeFailover,
		weights:      make(map[string]float64),
		queues:       make(map[string]*meshmodel.SendQueue),
		maxQueueSize: maxQueueSize,
		rng:          rand.New(rand.NewSource(1)),
		logger:       logger,
	}
	if cfg.Mode == ModeAdaptive {
		a.mode = ModeAdaptive
		a.explicitMode = true
	}
	for _, iface := range interfaces {
		a.queues[iface.Name] = meshmodel.NewSendQueue(maxQueueSize)
	}
	a.refresh(interfaces)
	return a
}

// Refresh replaces the live interface snapshot, recomputes weights, and
// re-evaluates mode. Safe to call from the optimization tick; never
// blocks selection (spec.md §4.D).
func (a *Aggregator) Refresh(interfaces []*meshmodel.Interface) {
	a.refresh(interfaces)
}

func (a *Aggregator) refresh(interfaces []*meshmodel.Interface) {
	weights := computeWeights(interfaces)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot = interfaces
	a.weights = weights
	if !a.explicitMode {
		a.mode = adjustMode(interfaces)
	}
}

// adjustMode picks failover for 0 or 1 active connections, load_balance
// otherwise (spec.md §4.D).
func adjustMode(interfaces []*meshmodel.Interface) Mode {
	active := 0
	for _, iface := range interfaces {
		if iface.Active {
			active++
		}
	}
	if active <= 1 {
		return ModeFailover
	}
	return ModeLoadBalance
}

// computeWeights implements the spec.md §4.D weight formula:
//
//	raw_i    = (bandwidth_i / 100) * max(0.1, 100 / latency_i)
//	weight_i = raw_i / Σ raw_j
//
// over qualifying interfaces (active, bandwidth>0, latency<sentinel).
// Disqualified interfaces get weight 0; if none qualify the map is empty.
func computeWeights(interfaces []*meshmodel.Interface) map[string]float64 {
	raw := make(map[string]float64)
	var total float64

	for _, iface := range interfaces {
		if !iface.Qualifies() {
			continue
		}
		factor := 100 / iface.Quality.LatencyMs
		if factor < 0.1 {
			factor = 0.1
		}
		r := (iface.Quality.BandwidthMbps / 100) * factor
		raw[iface.Name] = r
		total += r
	}

	if len(raw) == 0 || total == 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(raw))
	for name, r := range raw {
		weights[name] = r / total
	}
	return weights
}

// Weights returns a snapshot of the current weight map.
func (a *Aggregator) Weights() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]float64, len(a.weights))
	for k, v := range a.weights {
		out[k] = v
	}
	return out
}

// Mode returns the current aggregation mode.
func (a *Aggregator) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}
