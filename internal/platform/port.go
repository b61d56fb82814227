// Package platform abstracts the OS-level primitives the mesh bonding
// engine needs: interface enumeration/classification, broadcast
// datagram I/O, reachability probing, and interface admin state. The
// rest of the engine consumes the Port interface only; this package
// supplies one real, OS-backed implementation.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// ErrUnavailableInterface is returned when a named interface disappears
// between enumeration and use.
var ErrUnavailableInterface = errors.New("interface unavailable")

// Descriptor is a point-in-time enumeration result for one interface.
type Descriptor struct {
	Name      string
	Kind      meshmodel.Kind
	Address   string
	HWAddress string
}

// ProbeResult is the outcome of a single reachability probe.
type ProbeResult struct {
	Reachable bool
	RTTMs     float64
}

// Port is the abstract capability set the core consumes; the daemon's
// main wires a concrete Port implementation into the Mesh Manager.
type Port interface {
	// EnumerateInterfaces lists local interfaces, skipping loopback.
	EnumerateInterfaces(ctx context.Context) ([]Descriptor, error)

	// Classify maps an interface name to a Kind via prefix heuristics,
	// with an optional wireless query fallback.
	Classify(name string) meshmodel.Kind

	// IsUp reports operational state.
	IsUp(ctx context.Context, name string) (bool, error)

	// AdminUp/AdminDown bring the named interface administratively
	// up/down.
	AdminUp(ctx context.Context, name string) error
	AdminDown(ctx context.Context, name string) error

	// BroadcastSend writes payload to the broadcast address on port.
	BroadcastSend(ctx context.Context, payload []byte, port int) error

	// BroadcastListen listens on port for up to timeout, returning every
	// payload received in that window.
	BroadcastListen(ctx context.Context, port int, timeout time.Duration) ([][]byte, error)

	// Probe runs one reachability check against target, bound to the
	// named local interface, honouring the supplied deadline.
	Probe(ctx context.Context, name, target string, timeout time.Duration) (ProbeResult, error)

	// LocalAddress returns the primary local address.
	LocalAddress() (string, error)

	// HWAddress returns the hardware address of the named interface.
	HWAddress(name string) (string, error)

	// SignalStrength returns a best-effort wireless/cellular signal
	// reading for the named interface, or nil if not applicable or
	// unavailable.
	SignalStrength(name string) *int
}
