// Package events provides the append-only log of epidemiological events.
// The engine appends; HTTP handlers and the websocket hub read concurrently.
package events

import (
	"sync"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeSeedInfection EventType = "SEED_INFECTION" // infected at initialization
	EventTypeInfection     EventType = "INFECTION"      // transmission from another agent
	EventTypeZoneInfection EventType = "ZONE_INFECTION" // forced by the infection zone
	EventTypeRecovery      EventType = "RECOVERY"       // duration-based
	EventTypeZoneRecovery  EventType = "ZONE_RECOVERY"  // forced by the recovery zone
	EventTypeDeath         EventType = "DEATH"
	EventTypeVaccination   EventType = "VACCINATION"
	EventTypeTickCompleted EventType = "TICK_COMPLETED"
	EventTypeRunFinished   EventType = "RUN_FINISHED"
)

// NoAgent marks an event without an agent on that side.
const NoAgent agent.ID = -1

// SimEvent is an immutable record of something that happened during a tick.
type SimEvent struct {
	Seq      int         `json:"seq"`
	Tick     int         `json:"tick"`
	Type     EventType   `json:"type"`
	AgentID  agent.ID    `json:"agent_id"`  // who was affected
	SourceID agent.ID    `json:"source_id"` // who caused it, NoAgent for zones and system events
	Payload  interface{} `json:"payload,omitempty"`
}

// EventLog is the in-memory append-only log of simulation events.
type EventLog struct {
	mu     sync.RWMutex
	events []SimEvent
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{
		events: make([]SimEvent, 0),
	}
}

// Append adds an event and assigns its sequence number.
func (el *EventLog) Append(event SimEvent) SimEvent {
	el.mu.Lock()
	defer el.mu.Unlock()
	event.Seq = len(el.events)
	el.events = append(el.events, event)
	return event
}

// Len returns the number of events recorded.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]SimEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Since returns the events with Seq >= seq.
func (el *EventLog) Since(seq int) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(el.events) {
		return nil
	}
	out := make([]SimEvent, len(el.events)-seq)
	copy(out, el.events[seq:])
	return out
}

// GetByTick returns all events of a tick.
func (el *EventLog) GetByTick(tick int) []SimEvent {
	return el.filter(func(e SimEvent) bool { return e.Tick == tick })
}

// GetByAgent returns all events that affected or were caused by id.
func (el *EventLog) GetByAgent(id agent.ID) []SimEvent {
	return el.filter(func(e SimEvent) bool { return e.AgentID == id || e.SourceID == id })
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []SimEvent {
	return el.filter(func(e SimEvent) bool { return e.Type == t })
}

func (el *EventLog) filter(keep func(SimEvent) bool) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}
