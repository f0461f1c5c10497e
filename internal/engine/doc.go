// Package engine contains the simulation loop and the disease model.
// This is the heartbeat of epicurves.
//
// ARCHITECTURAL RULE: agents are only mutated inside a tick, by the system
// acting for them. Every random draw goes through the engine's single
// rng.Source in scheduler order, so a seed fully determines a run.
package engine
