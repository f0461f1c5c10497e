package engine

import (
	"slices"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/rng"
)

// RandomActivation activates every live agent exactly once per tick, in a
// fresh uniformly shuffled order, strictly sequentially.
type RandomActivation struct {
	rng    *rng.Source
	agents []*agent.Agent // ascending ID
}

// NewRandomActivation creates an empty scheduler drawing from r.
func NewRandomActivation(r *rng.Source) *RandomActivation {
	return &RandomActivation{
		rng:    r,
		agents: make([]*agent.Agent, 0),
	}
}

// Add schedules a. Agents must be added in ascending ID order.
func (ra *RandomActivation) Add(a *agent.Agent) {
	ra.agents = append(ra.agents, a)
}

// Remove unschedules id permanently.
func (ra *RandomActivation) Remove(id agent.ID) {
	ra.agents = slices.DeleteFunc(ra.agents, func(a *agent.Agent) bool { return a.ID == id })
}

// Len is the number of scheduled agents.
func (ra *RandomActivation) Len() int {
	return len(ra.agents)
}

// Step shuffles a copy of the agent list and acts each agent in turn.
// Agents removed earlier in the same tick are skipped.
func (ra *RandomActivation) Step(act func(a *agent.Agent)) {
	order := slices.Clone(ra.agents)
	ra.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	for _, a := range order {
		if !a.Alive() {
			continue
		}
		act(a)
	}
}
