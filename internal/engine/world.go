package engine

import (
	"fmt"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/rules"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/rng"
)

// counters are the aggregates reset at the start of every tick.
type counters struct {
	newCases      int
	newRecoveries int
	deaths        int
}

// world is the mutable state shared by the systems of one engine.
type world struct {
	cfg    scenario.Config
	rng    *rng.Source
	logger *logger.Logger
	events *events.EventLog // nil disables event recording

	agents []*agent.Agent // indexed by ID, dead agents included
	sched  *RandomActivation

	// removeFromTopology takes a dead agent off the substrate.
	removeFromTopology func(a *agent.Agent)

	tick            int
	perTick         counters
	vaccinations    int
	cumulativeCases int
}

func (w *world) record(t events.EventType, id, source agent.ID, payload interface{}) {
	if w.events == nil {
		return
	}
	w.events.Append(events.SimEvent{
		Tick:     w.tick,
		Type:     t,
		AgentID:  id,
		SourceID: source,
		Payload:  payload,
	})
}

// expose runs one transmission attempt against target: the infection draw,
// then the vaccine veto draw if target is vaccinated.
func (w *world) expose(target *agent.Agent) bool {
	if !w.rng.Chance(rules.InfectionProbability(target)) {
		return false
	}
	if target.IsVaccinated() && !w.rng.Chance(1-target.VaccinationEffectiveness) {
		return false
	}
	return true
}

// infect moves target to Infected. source is events.NoAgent for zones.
func (w *world) infect(target *agent.Agent, source agent.ID) {
	target.Infect()
	w.perTick.newCases++
	w.cumulativeCases++
	if source == events.NoAgent {
		w.record(events.EventTypeZoneInfection, target.ID, source, nil)
		return
	}
	w.record(events.EventTypeInfection, target.ID, source, nil)
}

// zoneRecover forces Infected -> Recovered without the survivor effects.
func (w *world) zoneRecover(a *agent.Agent) {
	a.Recover()
	w.perTick.newRecoveries++
	w.record(events.EventTypeZoneRecovery, a.ID, events.NoAgent, nil)
}

// durationRecover recovers a once it has been Infected for StepsToRecovery
// ticks. It reports whether a recovered.
func (w *world) durationRecover(a *agent.Agent) bool {
	steps := w.cfg.StepsToRecovery
	if steps <= 0 || a.State != agent.Infected || a.InfectedTicks < steps {
		return false
	}
	if first := a.Recover(); first {
		rules.ApplyFirstRecovery(a, w.cfg.Compat)
	}
	w.perTick.newRecoveries++
	w.record(events.EventTypeRecovery, a.ID, events.NoAgent, nil)
	return true
}

// kill marks a Dead and removes it from the topology and the scheduler.
func (w *world) kill(a *agent.Agent) {
	a.Kill()
	w.removeFromTopology(a)
	w.sched.Remove(a.ID)
	w.perTick.deaths++
	w.record(events.EventTypeDeath, a.ID, events.NoAgent, nil)
	w.logger.Event(string(events.EventTypeDeath), int(a.ID), fmt.Sprintf("tick %d", w.tick))
}

// progress updates the consecutive-infected counter.
func progress(a *agent.Agent) {
	if a.State == agent.Infected {
		a.InfectedTicks++
		return
	}
	a.InfectedTicks = 0
}
