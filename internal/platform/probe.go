package platform

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Probe runs one unprivileged ICMP echo against target, honouring
// timeout. The interface name is accepted for contract parity with the
// Platform Port but source-interface binding is left to the host's
// routing table, since an unprivileged "udp4" ICMP socket cannot be
// bound to a specific device the way a raw socket could.
func (p *RealPort) Probe(ctx context.Context, name, target string, timeout time.Duration) (ProbeResult, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s via %s: listen: %w", target, name, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	dst, err := net.ResolveIPAddr("ip4", target)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s: resolve: %w", target, err)
	}

	seq := int(time.Now().UnixNano() & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  seq,
			Data: []byte("meshbond-probe"),
		},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s: marshal: %w", target, err)
	}

	sent := time.Now()
	if _, err := conn.WriteTo(wire, &net.UDPAddr{IP: dst.IP}); err != nil {
		return ProbeResult{Reachable: false}, nil
	}

	reply := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(reply)
		if err != nil {
			return ProbeResult{Reachable: false}, nil
		}
		parsed, err := icmp.ParseMessage(1, reply[:n])
		if err != nil {
			continue
		}
		if parsed.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := parsed.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		rtt := time.Since(sent)
		return ProbeResult{Reachable: true, RTTMs: float64(rtt.Microseconds()) / 1000.0}, nil
	}
}
