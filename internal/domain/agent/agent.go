// Package agent defines the epidemiological agent of the simulation.
// This package is PURE and must NOT import any infrastructure packages.
package agent

// ID is the stable integer handle of an agent. IDs are never reused.
type ID int

// State is the epidemiological state. Exactly one holds at any time.
type State int

const (
	Susceptible State = iota
	Infected
	Recovered
	Dead
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "SUSCEPTIBLE"
	case Infected:
		return "INFECTED"
	case Recovered:
		return "RECOVERED"
	case Dead:
		return "DEAD"
	}
	return "UNKNOWN"
}

// MarshalText encodes the state by name so snapshots read well as JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cell is a grid coordinate on the torus.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NodeID is a graph node handle.
type NodeID int64

// Agent is one member of the population.
// Exactly one of Cell or Node is meaningful, depending on the topology mode.
type Agent struct {
	ID    ID    `json:"id"`
	State State `json:"state"`

	Cell Cell   `json:"cell"`
	Node NodeID `json:"node"`

	InfectedTicks int `json:"infected_ticks"` // consecutive ticks spent Infected
	RecoveryCount int `json:"recovery_count"` // Infected -> Recovered transitions

	Risk RiskProfile `json:"risk"`

	BaseInfectionChance      float64 `json:"base_infection_chance"`     // 0-100
	VaccinationEffectiveness float64 `json:"vaccination_effectiveness"` // 0-1
}

// New creates a Susceptible agent.
func New(id ID, baseInfectionChance float64, risk RiskProfile) *Agent {
	return &Agent{
		ID:                  id,
		State:               Susceptible,
		Risk:                risk,
		BaseInfectionChance: baseInfectionChance,
	}
}

// IsImmune reports whether the agent exhausted its recoveries.
// threshold <= 0 disables immunity.
func (a *Agent) IsImmune(threshold int) bool {
	return threshold > 0 && a.RecoveryCount >= threshold
}

// IsInfectable reports whether a transmission or zone may infect the agent.
// Recovered agents stay infectable until they become immune.
func (a *Agent) IsInfectable(threshold int) bool {
	if a.State != Susceptible && a.State != Recovered {
		return false
	}
	return !a.IsImmune(threshold)
}

// IsVaccinated reports whether a vaccination event has happened.
func (a *Agent) IsVaccinated() bool {
	return a.VaccinationEffectiveness > 0
}

// Infect moves the agent to Infected and restarts its duration counter.
func (a *Agent) Infect() {
	a.State = Infected
	a.InfectedTicks = 0
}

// Recover moves the agent out of Infected and counts the recovery.
// It reports whether this was the agent's first recovery.
func (a *Agent) Recover() bool {
	a.State = Recovered
	a.InfectedTicks = 0
	a.RecoveryCount++
	return a.RecoveryCount == 1
}

// Kill marks the agent Dead. Dead is terminal.
func (a *Agent) Kill() {
	a.State = Dead
	a.InfectedTicks = 0
}

// Alive reports whether the agent still takes part in the simulation.
func (a *Agent) Alive() bool {
	return a.State != Dead
}
