package meshmodel

import "time"

// FailoverEventKind enumerates the failover-log event types.
type FailoverEventKind string

const (
	EventConnectionLost     FailoverEventKind = "connection_lost"
	EventConnectionRestored FailoverEventKind = "connection_restored"
	EventManualFailover     FailoverEventKind = "manual_failover"
)

// FailoverEvent is one append-only record in the failover event log.
type FailoverEvent struct {
	Kind      FailoverEventKind
	Interface string
	Timestamp time.Time
	Detail    string
}

// EventLogCapacity bounds the retained failover event history.
const EventLogCapacity = 10

// EventLog is an append-only, capacity-bounded log of failover events.
// Not safe for concurrent use on its own; callers guard it with the
// Failover Manager's own lock.
type EventLog struct {
	events []FailoverEvent
}

// Append records an event, dropping the oldest entry once the log
// exceeds EventLogCapacity.
func (l *EventLog) Append(e FailoverEvent) {
	l.events = append(l.events, e)
	if len(l.events) > EventLogCapacity {
		l.events = l.events[len(l.events)-EventLogCapacity:]
	}
}

// Recent returns a copy of the retained events, oldest first.
func (l *EventLog) Recent() []FailoverEvent {
	out := make([]FailoverEvent, len(l.events))
	copy(out, l.events)
	return out
}
