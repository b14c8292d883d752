package core

// events.go – Event Sink (spec.md §4.G).
//
// Append-only lifecycle notifications for off-chain observers. Modelled
// on event_management.go's EventManager.Emit/List, but transient
// (observer-facing, not consensus state) and keyed by a random
// correlation id rather than a content hash, since two lifecycle events
// for the same channel can otherwise share an identical (type, id)
// pair and collide under the teacher's sha256(type||data) scheme.

import (
	"sync"

	"github.com/google/uuid"
)

// EventType names one of the five lifecycle events of spec.md §4.G.
type EventType string

const (
	EventChannelOpened      EventType = "ChannelOpened"
	EventCounterPartyJoined EventType = "CounterPartyJoined"
	EventChannelOnChallenge EventType = "ChannelOnChallenge"
	EventChannelChallenged  EventType = "ChannelChallenged"
	EventChannelClosed      EventType = "ChannelClosed"
)

// Event carries a channel id as its sole payload, per spec.md §6.
type Event struct {
	ID        string
	Type      EventType
	ChannelID ChannelID
}

// EventSink is an append-only lifecycle log. Events are emitted only on
// successful completion of the enclosing operation; a rolled-back
// operation emits nothing — callers must only call Emit after every
// guard and state mutation for an operation has already succeeded.
type EventSink interface {
	Emit(typ EventType, id ChannelID)
	List(typ EventType) []Event
}

// MemEventSink is an in-memory EventSink reference implementation.
type MemEventSink struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemEventSink returns an empty sink.
func NewMemEventSink() *MemEventSink { return &MemEventSink{} }

func (m *MemEventSink) Emit(typ EventType, id ChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{ID: uuid.NewString(), Type: typ, ChannelID: id})
	log.WithFields(logFields{"type": string(typ), "channel_id": id.Hex()}).Info("event emitted")
}

func (m *MemEventSink) List(typ EventType) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Event
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// All returns every recorded event in emission order.
func (m *MemEventSink) All() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
