// Package validation runs named behavioral scenarios against the engine.
//
// Each check builds its own engine from a fixed seed, drives it and compares
// an observed property with the expected one. The suite backs the
// scenario-runner binary and doubles as a smoke test for new rule changes.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
)

// Result captures the outcome of one scenario.
type Result struct {
	ScenarioName string `json:"scenario"`
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
	Passed       bool   `json:"passed"`
	Reason       string `json:"reason,omitempty"`
}

// Check is one named scenario.
type Check struct {
	Name     string
	Expected string
	Run      func(ctx context.Context) (actual string, err error)
}

// Suite executes checks in order.
type Suite struct {
	checks  []Check
	logger  *logger.Logger
	results []Result
}

// NewSuite creates a suite. With no checks it runs DefaultChecks.
func NewSuite(log *logger.Logger, checks ...Check) *Suite {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return &Suite{checks: checks, logger: log}
}

// Run executes every check, stopping early only if ctx ends.
func (s *Suite) Run(ctx context.Context) []Result {
	s.results = make([]Result, 0, len(s.checks))
	for _, c := range s.checks {
		if ctx.Err() != nil {
			break
		}
		r := Result{ScenarioName: c.Name, Expected: c.Expected}
		actual, err := c.Run(ctx)
		r.Actual = actual
		if err != nil {
			r.Reason = err.Error()
		} else {
			r.Passed = true
		}
		s.results = append(s.results, r)
		if r.Passed {
			s.logger.Info("Scenario passed", "scenario", c.Name)
		} else {
			s.logger.Warn("Scenario failed", "scenario", c.Name, "reason", r.Reason)
		}
	}
	return s.results
}

// GetResults returns the results of the last Run.
func (s *Suite) GetResults() []Result {
	return s.results
}

// Summary counts passed and failed results of the last Run.
func (s *Suite) Summary() (passed, failed int) {
	for _, r := range s.results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// DefaultChecks returns the behavioral properties every build must hold.
func DefaultChecks() []Check {
	return []Check{
		{Name: "population_conservation", Expected: "S+I+R+D equals the population on every row", Run: checkConservation},
		{Name: "determinism", Expected: "identical history for identical seed and config", Run: checkDeterminism},
		{Name: "infections_require_infectable_target", Expected: "new cases bounded by population x immunity threshold", Run: checkInfectionBound},
		{Name: "zero_carrier_prevalence", Expected: "prevalence of an absent factor stays 0", Run: checkZeroCarrier},
		{Name: "dead_agents_leave", Expected: "dead agents never listed, dead count never decreases", Run: checkDeadAgents},
		{Name: "single_agent", Expected: "no new cases and no state change for N=1", Run: checkSingleAgent},
		{Name: "full_infection_zone", Expected: "every agent infected on tick 1", Run: checkInfectionZone},
		{Name: "complete_graph", Expected: "whole population infected", Run: checkCompleteGraph},
		{Name: "recovery_timing", Expected: "recovered exactly on the 3rd infected tick", Run: checkRecoveryTiming},
		{Name: "event_replay", Expected: "states rebuilt from the event log match the engine", Run: checkEventReplay},
	}
}

func build(cfg scenario.Config, opts ...engine.Option) (*engine.Engine, error) {
	e, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario: %w", err)
	}
	return e, nil
}

func noRisk() scenario.RiskProportions {
	return scenario.RiskProportions{IncomeMultiplier: 1.0}
}

func checkConservation(ctx context.Context) (string, error) {
	for _, cfg := range []scenario.Config{scenario.DefaultGrid(), scenario.DefaultNetwork()} {
		cfg.EarlyStop = false
		e, err := build(cfg)
		if err != nil {
			return "", err
		}
		if _, err := e.Run(ctx, 100); err != nil {
			return "", err
		}
		for _, row := range e.History().Rows() {
			if row.Total() != cfg.Population {
				return fmt.Sprintf("%s tick %d: %d", cfg.Mode, row.Tick, row.Total()),
					fmt.Errorf("%s: counts sum to %d, want %d", cfg.Mode, row.Total(), cfg.Population)
			}
		}
	}
	return "conserved in both modes over 100 ticks", nil
}

func checkDeterminism(ctx context.Context) (string, error) {
	for _, cfg := range []scenario.Config{scenario.DefaultGrid(), scenario.DefaultNetwork()} {
		cfg.Seed = 2024
		cfg.EarlyStop = false
		var tables [2][]byte
		for i := range tables {
			e, err := build(cfg)
			if err != nil {
				return "", err
			}
			if _, err := e.Run(ctx, 60); err != nil {
				return "", err
			}
			if tables[i], err = json.Marshal(e.History()); err != nil {
				return "", err
			}
		}
		if !bytes.Equal(tables[0], tables[1]) {
			return "histories differ", fmt.Errorf("%s: two runs with seed %d diverged", cfg.Mode, cfg.Seed)
		}
	}
	return "byte-identical histories", nil
}

func checkInfectionBound(ctx context.Context) (string, error) {
	cfg := scenario.DefaultNetwork()
	cfg.EarlyStop = false
	e, err := build(cfg)
	if err != nil {
		return "", err
	}
	if _, err := e.Run(ctx, 200); err != nil {
		return "", err
	}
	total := 0
	for _, row := range e.History().Rows() {
		total += row.NewCases
	}
	bound := cfg.Population * cfg.ImmunityThreshold
	actual := fmt.Sprintf("%d new cases, bound %d", total, bound)
	if total > bound {
		return actual, fmt.Errorf("new cases exceed the immunity capacity")
	}
	return actual, nil
}

func checkZeroCarrier(ctx context.Context) (string, error) {
	cfg := scenario.DefaultNetwork()
	cfg.Risk.Tobacco = 0
	cfg.EarlyStop = false
	e, err := build(cfg)
	if err != nil {
		return "", err
	}
	if _, err := e.Run(ctx, 50); err != nil {
		return "", err
	}
	for _, row := range e.History().Rows() {
		if row.FactorPrevalence.Tobacco != 0 {
			return fmt.Sprintf("%v at tick %d", row.FactorPrevalence.Tobacco, row.Tick),
				fmt.Errorf("tobacco prevalence is non-zero without carriers")
		}
	}
	return "0 on every row", nil
}

func checkDeadAgents(ctx context.Context) (string, error) {
	cfg := scenario.DefaultGrid()
	cfg.Grid.InfectiousSize = 5
	cfg.DeathRisk = 60
	cfg.StepsToDeath = 2
	cfg.EarlyStop = false
	e, err := build(cfg)
	if err != nil {
		return "", err
	}
	prevDead := 0
	for i := 0; i < 60; i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		snap := e.Step()
		if snap.Dead < prevDead {
			return fmt.Sprintf("dead %d -> %d", prevDead, snap.Dead), fmt.Errorf("dead count decreased on tick %d", snap.Tick)
		}
		prevDead = snap.Dead
		for _, v := range e.Agents() {
			if v.State == agent.Dead {
				return fmt.Sprintf("agent %d listed", v.ID), fmt.Errorf("dead agent listed on tick %d", snap.Tick)
			}
		}
		if live := len(e.Agents()); live != cfg.Population-snap.Dead {
			return fmt.Sprintf("%d live agents", live), fmt.Errorf("live set does not match %d dead", snap.Dead)
		}
	}
	if prevDead == 0 {
		return "no deaths", fmt.Errorf("scenario produced no deaths to observe")
	}
	return fmt.Sprintf("%d deaths, none listed", prevDead), nil
}

func checkSingleAgent(ctx context.Context) (string, error) {
	grid := scenario.DefaultGrid()
	grid.Population = 1
	grid.Grid = scenario.GridConfig{Width: 10, Height: 10}
	grid.StepsToDeath = 0
	grid.EarlyStop = false

	network := scenario.DefaultNetwork()
	network.Population = 1
	network.Graph = scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 5}
	network.StepsToRecovery = 0
	network.VaccinationRate = 0
	network.EarlyStop = false

	for _, cfg := range []scenario.Config{grid, network} {
		e, err := build(cfg)
		if err != nil {
			return "", err
		}
		initial, _ := e.Agent(0)
		if _, err := e.Run(ctx, 30); err != nil {
			return "", err
		}
		for _, row := range e.History().Rows() {
			if row.NewCases != 0 {
				return fmt.Sprintf("%d new cases", row.NewCases), fmt.Errorf("%s: lone agent caused new cases", cfg.Mode)
			}
		}
		final, _ := e.Agent(0)
		if final.State != initial.State {
			return fmt.Sprintf("%s -> %s", initial.State, final.State), fmt.Errorf("%s: lone agent changed state", cfg.Mode)
		}
	}
	return "unchanged in both modes", nil
}

func checkInfectionZone(ctx context.Context) (string, error) {
	cfg := scenario.DefaultGrid()
	cfg.Grid = scenario.GridConfig{Width: 10, Height: 10, RecoverySize: 0, InfectiousSize: 10}
	cfg.ChanceOfInfection = 100
	e, err := build(cfg)
	if err != nil {
		return "", err
	}
	snap := e.Step()
	actual := fmt.Sprintf("%d of %d infected", snap.Infected, cfg.Population)
	if snap.Susceptible != 0 || snap.Infected != cfg.Population {
		return actual, fmt.Errorf("infection zone left agents susceptible")
	}
	return actual, nil
}

func checkCompleteGraph(ctx context.Context) (string, error) {
	cfg := scenario.DefaultNetwork()
	cfg.Population = 30
	cfg.Graph = scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 10}
	cfg.ChanceOfInfection = 100
	cfg.Risk = noRisk()
	cfg.ImmunityThreshold = 0
	cfg.StepsToRecovery = 0
	cfg.VaccinationRate = 0

	el := events.NewEventLog()
	e, err := build(cfg, engine.WithEventLog(el))
	if err != nil {
		return "", err
	}
	for i := 0; i < 11 && e.Snapshot().Infected < cfg.Population; i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.Step()
	}
	snap := e.Snapshot()
	actual := fmt.Sprintf("%d of %d infected by tick %d", snap.Infected, cfg.Population, snap.Tick)
	if snap.Infected != cfg.Population {
		return actual, fmt.Errorf("complete graph did not saturate")
	}
	if got := len(el.GetByType(events.EventTypeInfection)); got != cfg.Population-1 {
		return actual, fmt.Errorf("expected %d infection events, got %d", cfg.Population-1, got)
	}
	return actual, nil
}

func checkRecoveryTiming(ctx context.Context) (string, error) {
	cfg := scenario.DefaultNetwork()
	cfg.Population = 1
	cfg.Graph = scenario.GraphConfig{Type: scenario.GraphErdosRenyi, P: 5}
	cfg.StepsToRecovery = 3
	cfg.VaccinationRate = 0
	cfg.EarlyStop = false

	e, err := build(cfg)
	if err != nil {
		return "", err
	}
	for tick := 1; tick <= 3; tick++ {
		snap := e.Step()
		recovered := snap.Recovered == 1
		if recovered != (tick == 3) {
			return fmt.Sprintf("recovered=%v on tick %d", recovered, tick), fmt.Errorf("recovery fired on the wrong tick")
		}
	}
	return "recovered on tick 3", nil
}

func checkEventReplay(ctx context.Context) (string, error) {
	grid := scenario.DefaultGrid()
	grid.Grid.InfectiousSize = 4
	grid.EarlyStop = false
	network := scenario.DefaultNetwork()
	network.EarlyStop = false

	checked := 0
	for _, cfg := range []scenario.Config{grid, network} {
		el := events.NewEventLog()
		e, err := build(cfg, engine.WithEventLog(el))
		if err != nil {
			return "", err
		}
		if _, err := e.Run(ctx, 80); err != nil {
			return "", err
		}
		for id := 0; id < e.Population(); id++ {
			rebuilt := events.RebuildAgentState(el, agent.ID(id))
			view, alive := e.Agent(agent.ID(id))
			if !alive {
				if rebuilt.State != agent.Dead {
					return fmt.Sprintf("agent %d rebuilt as %s", id, rebuilt.State), fmt.Errorf("%s: dead agent not replayed as dead", cfg.Mode)
				}
				continue
			}
			if rebuilt.State != view.State || rebuilt.Recoveries != view.RecoveryCount {
				return fmt.Sprintf("agent %d: %s/%d vs %s/%d", id, rebuilt.State, rebuilt.Recoveries, view.State, view.RecoveryCount),
					fmt.Errorf("%s: replayed state diverges from the engine", cfg.Mode)
			}
			checked++
		}
	}
	return fmt.Sprintf("%d live agents replayed", checked), nil
}
