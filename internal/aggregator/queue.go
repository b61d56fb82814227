package aggregator

import "github.com/taniwha3/meshbond/internal/meshmodel"

// Enqueue implements the spec.md §4.D enqueue contract. If iface is
// empty, selection runs with len(payload) as the packet size. Counters
// (packets_sent/bytes_sent) update only on the success path — the
// capacity check happens before any mutation, so a failed enqueue never
// has side effects (spec.md §9 open-question resolution, see
// SPEC_FULL.md §12).
func (a *Aggregator) Enqueue(payload []byte, iface string) (string, error) {
	if iface == "" {
		selected, err := a.Select(len(payload))
		if err != nil {
			return "", err
		}
		iface = selected
	}

	a.mu.RLock()
	queue, ok := a.queues[iface]
	var target *meshmodel.Interface
	for _, i := range a.snapshot {
		if i.Name == iface {
			target = i
			break
		}
	}
	a.mu.RUnlock()

	if !ok {
		return "", ErrNoRoute
	}

	if err := queue.Enqueue(payload); err != nil {
		return iface, err
	}

	if target != nil {
		target.PacketsSent++
		target.BytesSent += uint64(len(payload))
	}
	return iface, nil
}

// Dequeue removes and returns the oldest payload queued for iface.
func (a *Aggregator) Dequeue(iface string) []byte {
	a.mu.RLock()
	queue, ok := a.queues[iface]
	a.mu.RUnlock()
	if !ok {
		return nil
	}
	return queue.Dequeue()
}

// QueueLen reports the current depth of iface's send queue.
func (a *Aggregator) QueueLen(iface string) int {
	a.mu.RLock()
	queue, ok := a.queues[iface]
	a.mu.RUnlock()
	if !ok {
		return 0
	}
	return queue.Len()
}
