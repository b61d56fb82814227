package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/taniwha3/meshbond/internal/meshmodel"
	"github.com/taniwha3/meshbond/internal/platform"
)

// DefaultPort is the UDP port discovery datagrams are broadcast on.
const DefaultPort = 9999

// ListenWindow is how long a discovery pass listens for replies.
const ListenWindow = 3 * time.Second

// Config configures one Discovery instance.
type Config struct {
	Port         int
	Group        string
	ListenWindow time.Duration
}

// DefaultConfig returns the spec.md default discovery configuration.
func DefaultConfig() Config {
	return Config{Port: DefaultPort, Group: DefaultGroup, ListenWindow: ListenWindow}
}

// Discovery runs discovery passes against a Platform Port.
type Discovery struct {
	port   platform.Port
	cfg    Config
	logger *slog.Logger
}

// New creates a Discovery instance.
func New(port platform.Port, cfg Config, logger *slog.Logger) *Discovery {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.ListenWindow == 0 {
		cfg.ListenWindow = ListenWindow
	}
	return &Discovery{port: port, cfg: cfg, logger: logger}
}

// RunPass executes one discovery pass (spec.md §4.C):
//  1. broadcast a DISCOVERY_REQUEST,
//  2. listen for up to the configured window collecting replies,
//  3. decode/validate each payload,
//  4. return the valid peer records,
//  5. broadcast one NODE_ADVERTISEMENT for the local node, unconditionally.
func (d *Discovery) RunPass(ctx context.Context, localNode *meshmodel.Node) ([]*meshmodel.Node, error) {
	request, err := EncodeDiscoveryRequest(localNode.NodeID, d.cfg.Group, time.Now())
	if err != nil {
		return nil, err
	}
	if err := d.port.BroadcastSend(ctx, request, d.cfg.Port); err != nil {
		d.logger.Error("discovery: broadcast request failed", "error", err)
	}

	payloads, err := d.port.BroadcastListen(ctx, d.cfg.Port, d.cfg.ListenWindow)
	if err != nil {
		d.logger.Error("discovery: listen failed", "error", err)
		payloads = nil
	}

	peers := make([]*meshmodel.Node, 0, len(payloads))
	for _, payload := range payloads {
		if IsDiscoveryRequest(payload, d.cfg.Group) {
			continue
		}
		peer, err := DecodeAdvertisement(payload, d.cfg.Group, localNode.NodeID)
		if err != nil {
			d.logger.Debug("discovery: dropping malformed datagram", "error", err)
			continue
		}
		peers = append(peers, peer)
	}

	advertisement, err := EncodeNodeAdvertisement(localNode, d.cfg.Group, time.Now())
	if err != nil {
		return peers, err
	}
	if err := d.port.BroadcastSend(ctx, advertisement, d.cfg.Port); err != nil {
		d.logger.Error("discovery: broadcast advertisement failed", "error", err)
	}

	return peers, nil
}
