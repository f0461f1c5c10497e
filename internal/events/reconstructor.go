package events

import (
	"fmt"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// RebuiltState is one agent's epidemiological record replayed from the log.
// State is the state implied by the last transition event; agents with no
// events are Susceptible.
type RebuiltState struct {
	AgentID       agent.ID    `json:"agent_id"`
	State         agent.State `json:"state"`
	Infections    int         `json:"infections"` // seed and zone infections included
	Recoveries    int         `json:"recoveries"`
	Vaccinations  int         `json:"vaccinations"`
	Transmissions int         `json:"transmissions"` // agents this one infected
	InfectedBy    []agent.ID  `json:"infected_by,omitempty"`
	DiedAt        int         `json:"died_at"` // -1 while alive
}

// RecapEvent is a simplified event for an agent timeline.
type RecapEvent struct {
	Tick      int       `json:"tick"`
	EventType EventType `json:"event_type"`
	Summary   string    `json:"summary"`
	Impact    string    `json:"impact"` // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// RebuildAgentState reconstructs an agent's state from the log.
func RebuildAgentState(el *EventLog, id agent.ID) RebuiltState {
	state := RebuiltState{AgentID: id, State: agent.Susceptible, DiedAt: -1}
	for _, e := range el.GetByAgent(id) {
		applyEventToState(&state, e)
	}
	return state
}

// GenerateRecap creates the timeline of an agent from sinceTick onwards.
func GenerateRecap(el *EventLog, id agent.ID, sinceTick int) []RecapEvent {
	recap := make([]RecapEvent, 0)
	for _, e := range el.GetByAgent(id) {
		if e.Tick < sinceTick {
			continue
		}
		recap = append(recap, RecapEvent{
			Tick:      e.Tick,
			EventType: e.Type,
			Summary:   summarizeEvent(e, id),
			Impact:    determineImpact(e, id),
		})
	}
	return recap
}

// applyEventToState modifies state based on event type.
func applyEventToState(state *RebuiltState, e SimEvent) {
	if e.SourceID == state.AgentID && e.AgentID != state.AgentID {
		if e.Type == EventTypeInfection {
			state.Transmissions++
		}
		return
	}

	switch e.Type {
	case EventTypeSeedInfection, EventTypeZoneInfection:
		state.State = agent.Infected
		state.Infections++
	case EventTypeInfection:
		state.State = agent.Infected
		state.Infections++
		state.InfectedBy = append(state.InfectedBy, e.SourceID)
	case EventTypeRecovery, EventTypeZoneRecovery:
		state.State = agent.Recovered
		state.Recoveries++
	case EventTypeVaccination:
		state.Vaccinations++
	case EventTypeDeath:
		state.State = agent.Dead
		state.DiedAt = e.Tick
	}
}

// summarizeEvent creates a human-readable summary.
func summarizeEvent(e SimEvent, observer agent.ID) string {
	switch e.Type {
	case EventTypeSeedInfection:
		return "Infected at the start of the run."
	case EventTypeInfection:
		if e.SourceID == observer {
			return fmt.Sprintf("Infected agent %d.", e.AgentID)
		}
		return fmt.Sprintf("Infected by agent %d.", e.SourceID)
	case EventTypeZoneInfection:
		return "Infected in the infection zone."
	case EventTypeRecovery:
		return "Recovered after the illness ran its course."
	case EventTypeZoneRecovery:
		return "Recovered in the recovery zone."
	case EventTypeVaccination:
		return "Accepted vaccination."
	case EventTypeDeath:
		return "Died."
	default:
		return "Something happened."
	}
}

// determineImpact classifies the event from the observer's point of view.
func determineImpact(e SimEvent, observer agent.ID) string {
	switch e.Type {
	case EventTypeSeedInfection, EventTypeZoneInfection, EventTypeDeath:
		return "NEGATIVE"
	case EventTypeInfection:
		if e.SourceID == observer {
			return "NEUTRAL"
		}
		return "NEGATIVE"
	case EventTypeRecovery, EventTypeZoneRecovery, EventTypeVaccination:
		return "POSITIVE"
	default:
		return "NEUTRAL"
	}
}
