package events

import (
	"testing"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

func sampleLog() *EventLog {
	el := NewEventLog()
	el.Append(SimEvent{Tick: 0, Type: EventTypeSeedInfection, AgentID: 0, SourceID: NoAgent})
	el.Append(SimEvent{Tick: 1, Type: EventTypeInfection, AgentID: 1, SourceID: 0})
	el.Append(SimEvent{Tick: 2, Type: EventTypeInfection, AgentID: 2, SourceID: 0})
	el.Append(SimEvent{Tick: 3, Type: EventTypeRecovery, AgentID: 0, SourceID: NoAgent})
	el.Append(SimEvent{Tick: 3, Type: EventTypeVaccination, AgentID: 0, SourceID: NoAgent})
	el.Append(SimEvent{Tick: 5, Type: EventTypeInfection, AgentID: 0, SourceID: 2})
	el.Append(SimEvent{Tick: 6, Type: EventTypeDeath, AgentID: 1, SourceID: NoAgent})
	el.Append(SimEvent{Tick: 6, Type: EventTypeTickCompleted, AgentID: NoAgent, SourceID: NoAgent})
	return el
}

func TestRebuildAgentState(t *testing.T) {
	el := sampleLog()

	zero := RebuildAgentState(el, 0)
	if zero.State != agent.Infected || zero.Infections != 2 || zero.Recoveries != 1 || zero.Vaccinations != 1 {
		t.Errorf("Unexpected state for agent 0: %+v", zero)
	}
	if zero.Transmissions != 2 || len(zero.InfectedBy) != 1 || zero.InfectedBy[0] != 2 || zero.DiedAt != -1 {
		t.Errorf("Unexpected links for agent 0: %+v", zero)
	}

	one := RebuildAgentState(el, 1)
	if one.State != agent.Dead || one.DiedAt != 6 || one.Infections != 1 {
		t.Errorf("Unexpected state for agent 1: %+v", one)
	}

	untouched := RebuildAgentState(el, 9)
	if untouched.State != agent.Susceptible || untouched.Infections != 0 {
		t.Errorf("Expected a susceptible agent without events, got %+v", untouched)
	}
}

func TestGenerateRecap(t *testing.T) {
	recap := GenerateRecap(sampleLog(), 0, 3)
	if len(recap) != 3 {
		t.Fatalf("Expected 3 entries since tick 3, got %d", len(recap))
	}
	if recap[0].EventType != EventTypeRecovery || recap[0].Impact != "POSITIVE" {
		t.Errorf("Unexpected first entry %+v", recap[0])
	}
	if last := recap[2]; last.Tick != 5 || last.Impact != "NEGATIVE" || last.Summary != "Infected by agent 2." {
		t.Errorf("Unexpected last entry %+v", last)
	}

	spreader := GenerateRecap(sampleLog(), 0, 0)
	if spreader[1].Summary != "Infected agent 1." || spreader[1].Impact != "NEUTRAL" {
		t.Errorf("Unexpected transmission entry %+v", spreader[1])
	}
}
