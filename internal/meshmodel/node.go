package meshmodel

import "time"

// Node is a participant in the mesh, identified by a stable UUID derived
// from hostname + hardware address.
type Node struct {
	NodeID  string
	Address string

	// Interfaces is kept as an ordered slice, not a bare map, so that
	// deterministic iteration order (failover selection, adaptive
	// tie-breaking) is stable and reproducible.
	Interfaces []*Interface

	Bandwidth        map[string]float64 // interface name -> bandwidth Mbps
	Latency          map[string]float64 // interface name -> latency ms
	DataCapRemaining map[string]float64 // interface name -> remaining cap MB

	LastSeen  time.Time // peer only
	UpdatedAt time.Time // local only
}

// NewNode creates an empty node record with the given stable id.
func NewNode(nodeID string) *Node {
	return &Node{
		NodeID:           nodeID,
		Bandwidth:        make(map[string]float64),
		Latency:          make(map[string]float64),
		DataCapRemaining: make(map[string]float64),
	}
}

// InterfaceNames returns the ordered list of interface names carried by
// this node record.
func (n *Node) InterfaceNames() []string {
	names := make([]string, 0, len(n.Interfaces))
	for _, iface := range n.Interfaces {
		names = append(names, iface.Name)
	}
	return names
}

// Interface returns the named interface record, or nil if absent.
func (n *Node) Interface(name string) *Interface {
	for _, iface := range n.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// Snapshot returns a value copy of the node suitable for publishing to
// readers without sharing mutable interface pointers (spec.md §9: the
// aggregator never mutates the node record it reads off of).
func (n *Node) Snapshot() Node {
	cp := *n
	cp.Interfaces = make([]*Interface, len(n.Interfaces))
	for i, iface := range n.Interfaces {
		ifaceCopy := *iface
		historyCopy := *iface.History
		ifaceCopy.History = &historyCopy
		cp.Interfaces[i] = &ifaceCopy
	}
	cp.Bandwidth = copyFloatMap(n.Bandwidth)
	cp.Latency = copyFloatMap(n.Latency)
	cp.DataCapRemaining = copyFloatMap(n.DataCapRemaining)
	return cp
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	cp := make(map[string]float64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
