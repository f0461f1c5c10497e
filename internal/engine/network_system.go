package engine

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/rng"
	"github.com/MRamiBalles/epicurves/internal/topology"
)

// NetworkSystem is the rule set of agents on a random graph:
// move, transmit, progress, duration recovery, vaccination. Nobody dies.
type NetworkSystem struct {
	w           *world
	net         *topology.Network
	vaccination *VaccinationSystem
}

func newNetworkSystem(w *world, net *topology.Network, vs *VaccinationSystem) *NetworkSystem {
	return &NetworkSystem{w: w, net: net, vaccination: vs}
}

// Act runs the full per-tick action of a.
func (ns *NetworkSystem) Act(a *agent.Agent) {
	ns.move(a)
	if a.State == agent.Infected {
		ns.transmit(a)
	}
	progress(a)
	if ns.w.durationRecover(a) {
		ns.vaccination.OnRecovery(a)
	}
}

// move jumps to a random node within distance 2. Isolated nodes stay put.
func (ns *NetworkSystem) move(a *agent.Agent) {
	nodes := ns.net.Within(a.Node, 2)
	if len(nodes) == 0 {
		return
	}
	to := rng.Pick(ns.w.rng, nodes)
	if ns.net.Move(a.ID, a.Node, to) {
		a.Node = to
	}
}

// transmit scans the agents on adjacent nodes in order and stops at the
// first successful infection.
func (ns *NetworkSystem) transmit(a *agent.Agent) {
	for _, id := range ns.net.NeighborAgents(a.Node) {
		target := ns.w.agents[id]
		if !target.IsInfectable(ns.w.cfg.ImmunityThreshold) {
			continue
		}
		if ns.w.expose(target) {
			ns.w.infect(target, a.ID)
			return
		}
	}
}
