package engine

import (
	"context"
	"fmt"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/rules"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/rng"
	"github.com/MRamiBalles/epicurves/internal/topology"
)

// Engine is the simulation controller. It owns the configuration, the
// random source, the topology, the agents and the history table.
// An Engine is NOT safe for concurrent use; see Runner.
type Engine struct {
	w       *world
	system  ActSystem
	stats   *StatsCollector
	history *History
	last    Snapshot

	grid *topology.Grid
	net  *topology.Network
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.w.logger = l }
}

// WithEventLog records every transition into el.
func WithEventLog(el *events.EventLog) Option {
	return func(e *Engine) { e.w.events = el }
}

// RunResult reports how a call to Run ended.
type RunResult struct {
	Ticks        int  `json:"ticks"`
	StoppedEarly bool `json:"stopped_early"`
	Cancelled    bool `json:"cancelled"`
}

// New validates cfg, builds the topology, creates and places every agent,
// and records row 0 of the history. Nothing is built if cfg is invalid.
func New(cfg scenario.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	r := rng.New(cfg.Seed)
	w := &world{
		cfg:    cfg,
		rng:    r,
		logger: logger.NewNop(),
		agents: make([]*agent.Agent, 0, cfg.Population),
		sched:  NewRandomActivation(r),
	}
	e := &Engine{w: w, history: newHistory()}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	switch cfg.Mode {
	case scenario.ModeGrid:
		err = e.buildGrid()
	case scenario.ModeNetwork:
		err = e.buildNetwork()
	default:
		err = &scenario.ConfigurationError{Field: "mode", Value: cfg.Mode, Reason: "unknown mode"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	for i := 0; i < cfg.InitialInfected; i++ {
		w.agents[i].Infect()
		w.cumulativeCases++
		w.record(events.EventTypeSeedInfection, w.agents[i].ID, events.NoAgent, nil)
	}

	e.stats = newStatsCollector(w)
	e.last = e.stats.Collect()
	e.history.append(e.last)

	w.logger.Info("Engine initialized",
		"mode", cfg.Mode, "population", cfg.Population, "seed", cfg.Seed,
		"infected", e.last.Infected)
	return e, nil
}

func (e *Engine) newAgent(id int) *agent.Agent {
	cfg := e.w.cfg
	profile := rules.SampleProfile(e.w.rng, cfg.Risk, cfg.Compat)
	return agent.New(agent.ID(id), cfg.ChanceOfInfection, profile)
}

// buildGrid places every agent on a uniformly random cell.
func (e *Engine) buildGrid() error {
	grid, err := topology.NewGrid(e.w.cfg.Grid)
	if err != nil {
		return err
	}
	for i := 0; i < e.w.cfg.Population; i++ {
		a := e.newAgent(i)
		a.Node = -1
		a.Cell = agent.Cell{X: e.w.rng.IntN(grid.Width()), Y: e.w.rng.IntN(grid.Height())}
		grid.Place(a.ID, a.Cell)
		e.w.agents = append(e.w.agents, a)
		e.w.sched.Add(a)
	}
	e.grid = grid
	e.w.removeFromTopology = func(a *agent.Agent) { grid.Remove(a.ID, a.Cell) }
	e.system = newGridSystem(e.w, grid)
	return nil
}

// buildNetwork generates the graph and puts agent i on node i.
func (e *Engine) buildNetwork() error {
	g, err := topology.Generate(e.w.cfg.Graph, e.w.cfg.Population, e.w.rng)
	if err != nil {
		return err
	}
	net := topology.NewNetwork(g)
	for i := 0; i < e.w.cfg.Population; i++ {
		a := e.newAgent(i)
		a.Node = agent.NodeID(i)
		net.Place(a.ID, a.Node)
		e.w.agents = append(e.w.agents, a)
		e.w.sched.Add(a)
	}
	e.net = net
	e.w.removeFromTopology = func(a *agent.Agent) { net.Remove(a.ID, a.Node) }
	e.system = newNetworkSystem(e.w, net, newVaccinationSystem(e.w))
	return nil
}

// Step advances one tick: every live agent acts once in shuffled order,
// then a snapshot is collected and appended to the history.
func (e *Engine) Step() Snapshot {
	e.w.tick++
	e.w.perTick = counters{}

	e.w.sched.Step(e.system.Act)

	e.last = e.stats.Collect()
	e.history.append(e.last)
	e.w.record(events.EventTypeTickCompleted, events.NoAgent, events.NoAgent, e.last)
	return e.last
}

// Done reports whether the early-stop rule fires: at least one tick has
// elapsed and nobody is Infected.
func (e *Engine) Done() bool {
	return e.w.cfg.EarlyStop && e.w.tick >= 1 && e.last.Infected == 0
}

// Run steps until numTicks ticks elapse, the early-stop rule fires, or ctx
// is cancelled. ctx is only checked between ticks.
func (e *Engine) Run(ctx context.Context, numTicks int) (RunResult, error) {
	var res RunResult
	for res.Ticks < numTicks {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			e.w.logger.Warn("Run cancelled", "tick", e.w.tick)
			return res, err
		}
		if e.Done() {
			res.StoppedEarly = true
			e.w.logger.Info("Early stop: no infected agents left", "tick", e.w.tick)
			break
		}
		e.Step()
		res.Ticks++
	}
	e.w.record(events.EventTypeRunFinished, events.NoAgent, events.NoAgent, res)
	return res, nil
}

// Tick is the number of ticks elapsed.
func (e *Engine) Tick() int {
	return e.w.tick
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() scenario.Config {
	return e.w.cfg
}

// Snapshot returns the snapshot of the latest tick.
func (e *Engine) Snapshot() Snapshot {
	return e.last
}

// History exposes the tick table read-only.
func (e *Engine) History() *History {
	return e.history
}

// Events returns the event log, or nil if none was configured.
func (e *Engine) Events() *events.EventLog {
	return e.w.events
}

// Population is the number of agents created.
func (e *Engine) Population() int {
	return len(e.w.agents)
}

// Seed returns the seed of the random source.
func (e *Engine) Seed() uint64 {
	return e.w.rng.Seed()
}

// Draws is the number of random values consumed so far.
func (e *Engine) Draws() uint64 {
	return e.w.rng.Draws()
}

// Edges returns the graph edge list. It is nil in grid mode.
func (e *Engine) Edges() []topology.Edge {
	if e.net == nil {
		return nil
	}
	return e.net.Edges()
}

// Zones returns the recovery and infection cells. Both are nil in network mode.
func (e *Engine) Zones() (recovery, infection []agent.Cell) {
	if e.grid == nil {
		return nil, nil
	}
	return e.grid.RecoveryZone(), e.grid.InfectionZone()
}
