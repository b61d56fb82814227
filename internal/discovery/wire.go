package discovery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// DefaultGroup is the namespace selector carried in every discovery
// datagram; datagrams outside this group are ignored.
const DefaultGroup = "MESH_NETWORK_GROUP"

const (
	typeDiscoveryRequest  = "DISCOVERY_REQUEST"
	typeNodeAdvertisement = "NODE_ADVERTISEMENT"
)

// envelope is the outermost wire shape shared by both datagram types.
type envelope struct {
	Type      string        `json:"type"`
	NodeID    string        `json:"node_id,omitempty"`
	NodeData  *nodeDataWire `json:"node_data,omitempty"`
	Group     string        `json:"group"`
	Timestamp float64       `json:"timestamp"`
}

// nodeDataWire mirrors the NODE_ADVERTISEMENT node_data object.
type nodeDataWire struct {
	NodeID      string             `json:"node_id"`
	IPAddress   string             `json:"ip_address"`
	Connections []string           `json:"connections"`
	Bandwidth   map[string]float64 `json:"bandwidth"`
	Latency     map[string]float64 `json:"latency"`
	DataCaps    map[string]float64 `json:"data_caps"`
	Timestamp   float64            `json:"timestamp"`
}

// EncodeDiscoveryRequest builds a DISCOVERY_REQUEST datagram.
func EncodeDiscoveryRequest(nodeID, group string, at time.Time) ([]byte, error) {
	env := envelope{
		Type:      typeDiscoveryRequest,
		NodeID:    nodeID,
		Group:     group,
		Timestamp: float64(at.UnixNano()) / 1e9,
	}
	return json.Marshal(env)
}

// EncodeNodeAdvertisement builds a NODE_ADVERTISEMENT datagram for node.
func EncodeNodeAdvertisement(node *meshmodel.Node, group string, at time.Time) ([]byte, error) {
	wire := &nodeDataWire{
		NodeID:      node.NodeID,
		IPAddress:   node.Address,
		Connections: node.InterfaceNames(),
		Bandwidth:   node.Bandwidth,
		Latency:     node.Latency,
		DataCaps:    node.DataCapRemaining,
		Timestamp:   float64(at.UnixNano()) / 1e9,
	}
	env := envelope{
		Type:      typeNodeAdvertisement,
		NodeData:  wire,
		Group:     group,
		Timestamp: float64(at.UnixNano()) / 1e9,
	}
	return json.Marshal(env)
}

// ErrWrongGroup is returned when a datagram's group does not match.
var ErrWrongGroup = fmt.Errorf("discovery: datagram outside configured group")

// ErrMalformed is returned when a datagram fails validation (spec.md §4.C).
var ErrMalformed = fmt.Errorf("discovery: malformed datagram")

// DecodeAdvertisement validates and decodes a NODE_ADVERTISEMENT
// payload into a peer Node record. A payload is admissible iff it
// decodes as a JSON object, carries the five required fields with
// matching types, its group matches, and its node_id differs from
// localNodeID.
func DecodeAdvertisement(payload []byte, group, localNodeID string) (*meshmodel.Node, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type != typeNodeAdvertisement || env.NodeData == nil {
		return nil, ErrMalformed
	}
	if env.Group != group {
		return nil, ErrWrongGroup
	}

	data := env.NodeData
	// Presence check: json.Unmarshal above has already rejected required
	// fields of the wrong type; here each must exist and not be null.
	var present struct {
		NodeData map[string]json.RawMessage `json:"node_data"`
	}
	if err := json.Unmarshal(payload, &present); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, field := range []string{"node_id", "ip_address", "connections", "bandwidth", "latency"} {
		if raw, ok := present.NodeData[field]; !ok || string(raw) == "null" {
			return nil, ErrMalformed
		}
	}
	if data.NodeID == localNodeID {
		return nil, ErrMalformed
	}

	node := meshmodel.NewNode(data.NodeID)
	node.Address = data.IPAddress
	node.Bandwidth = data.Bandwidth
	node.Latency = data.Latency
	node.DataCapRemaining = data.DataCaps
	for _, name := range data.Connections {
		iface := meshmodel.NewInterface(name, meshmodel.KindUnknown)
		node.Interfaces = append(node.Interfaces, iface)
	}
	return node, nil
}

// IsDiscoveryRequest reports whether payload decodes as a
// DISCOVERY_REQUEST in the given group.
func IsDiscoveryRequest(payload []byte, group string) bool {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	return env.Type == typeDiscoveryRequest && env.Group == group
}
