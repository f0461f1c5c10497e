package engine

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// AgentView is the read-only state of one live agent for renderers.
// X and Y are -1 in network mode; Node is -1 in grid mode.
type AgentView struct {
	ID                       agent.ID     `json:"id"`
	State                    agent.State  `json:"state"`
	Immune                   bool         `json:"immune"`
	X                        int          `json:"x"`
	Y                        int          `json:"y"`
	Node                     agent.NodeID `json:"node"`
	InfectedTicks            int          `json:"infected_ticks"`
	RecoveryCount            int          `json:"recovery_count"`
	VaccinationEffectiveness float64      `json:"vaccination_effectiveness"`
}

func (e *Engine) view(a *agent.Agent) AgentView {
	v := AgentView{
		ID:                       a.ID,
		State:                    a.State,
		Immune:                   a.IsImmune(e.w.cfg.ImmunityThreshold),
		X:                        -1,
		Y:                        -1,
		Node:                     -1,
		InfectedTicks:            a.InfectedTicks,
		RecoveryCount:            a.RecoveryCount,
		VaccinationEffectiveness: a.VaccinationEffectiveness,
	}
	if e.grid != nil {
		v.X, v.Y = a.Cell.X, a.Cell.Y
	} else {
		v.Node = a.Node
	}
	return v
}

// Agents returns every live agent in ID order.
func (e *Engine) Agents() []AgentView {
	views := make([]AgentView, 0, len(e.w.agents))
	for _, a := range e.w.agents {
		if !a.Alive() {
			continue
		}
		views = append(views, e.view(a))
	}
	return views
}

// Agent returns the view of id. Dead and unknown agents report false.
func (e *Engine) Agent(id agent.ID) (AgentView, bool) {
	if id < 0 || int(id) >= len(e.w.agents) || !e.w.agents[id].Alive() {
		return AgentView{}, false
	}
	return e.view(e.w.agents[id]), true
}

// Risk returns the risk profile of id, dead agents included.
func (e *Engine) Risk(id agent.ID) (agent.RiskProfile, bool) {
	if id < 0 || int(id) >= len(e.w.agents) {
		return agent.RiskProfile{}, false
	}
	return e.w.agents[id].Risk, true
}
