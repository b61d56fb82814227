package platform

import (
	"context"
	"fmt"
	"net"
	"time"
)

// broadcastAddress is the limited IPv4 broadcast address used for
// discovery datagrams (spec.md §9: raw frames are not required — plain
// UDP broadcast on the configured port is sufficient).
const broadcastAddress = "255.255.255.255"

// BroadcastSend writes payload to the broadcast address on port.
func (p *RealPort) BroadcastSend(ctx context.Context, payload []byte, port int) error {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("broadcast send: listen: %w", err)
	}
	defer conn.Close()

	if pc, ok := conn.(*net.UDPConn); ok {
		_ = pc.SetWriteBuffer(1 << 16)
	}

	dst := &net.UDPAddr{IP: net.ParseIP(broadcastAddress), Port: port}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.WriteTo(payload, dst); err != nil {
		return fmt.Errorf("broadcast send: write: %w", err)
	}
	return nil
}

// BroadcastListen listens on port for up to timeout, returning every
// payload received in that window.
func (p *RealPort) BroadcastListen(ctx context.Context, port int, timeout time.Duration) ([][]byte, error) {
	addr := &net.UDPAddr{Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("broadcast listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetReadDeadline(deadline)

	var payloads [][]byte
	buf := make([]byte, 64*1024)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			// Read deadline exceeded is the normal end-of-window case.
			break
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		payloads = append(payloads, payload)

		select {
		case <-ctx.Done():
			return payloads, ctx.Err()
		default:
		}
	}
	return payloads, nil
}
