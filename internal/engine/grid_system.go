package engine

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/rules"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/rng"
	"github.com/MRamiBalles/epicurves/internal/topology"
)

// ActSystem performs one agent's action for the current tick.
type ActSystem interface {
	Act(a *agent.Agent)
}

// GridSystem is the rule set of agents on the zoned torus:
// move, transmit, progress, zones, duration recovery, death.
type GridSystem struct {
	w    *world
	grid *topology.Grid
}

// newGridSystem binds the grid rule set to a world.
func newGridSystem(w *world, grid *topology.Grid) *GridSystem {
	return &GridSystem{w: w, grid: grid}
}

// Act runs the full per-tick action of a.
func (gs *GridSystem) Act(a *agent.Agent) {
	gs.move(a)
	if a.State == agent.Infected {
		gs.transmit(a)
	}
	progress(a)
	gs.applyZones(a)
	gs.w.durationRecover(a)
	gs.checkDeath(a)
}

// move steps to a random Moore neighbor. A 1x1 torus has none.
func (gs *GridSystem) move(a *agent.Agent) {
	cells := gs.grid.Neighborhood(a.Cell, false)
	if len(cells) == 0 {
		return
	}
	to := rng.Pick(gs.w.rng, cells)
	if gs.grid.Move(a.ID, a.Cell, to) {
		a.Cell = to
	}
}

// transmit picks one agent from the neighborhood, own cell and a included,
// and exposes it if it is infectable.
func (gs *GridSystem) transmit(a *agent.Agent) {
	candidates := gs.grid.NeighborAgents(a.Cell, true)
	if len(candidates) <= 1 {
		return
	}
	target := gs.w.agents[rng.Pick(gs.w.rng, candidates)]
	if !target.IsInfectable(gs.w.cfg.ImmunityThreshold) {
		return
	}
	if gs.w.expose(target) {
		gs.w.infect(target, a.ID)
	}
}

// applyZones forces transitions on zone cells regardless of duration.
func (gs *GridSystem) applyZones(a *agent.Agent) {
	switch {
	case a.State == agent.Infected && gs.grid.InRecoveryZone(a.Cell):
		gs.w.zoneRecover(a)
	case a.IsInfectable(gs.w.cfg.ImmunityThreshold) && gs.grid.InInfectionZone(a.Cell):
		gs.w.infect(a, events.NoAgent)
	}
}

func (gs *GridSystem) checkDeath(a *agent.Agent) {
	steps := gs.w.cfg.StepsToDeath
	if steps <= 0 || a.State != agent.Infected || a.InfectedTicks < steps {
		return
	}
	if gs.w.rng.Chance(rules.DeathProbability(a, gs.w.cfg.DeathRisk)) {
		gs.w.kill(a)
	}
}
