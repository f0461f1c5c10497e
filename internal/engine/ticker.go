package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
)

// TickSink consumes every snapshot a Runner produces, row 0 included.
type TickSink interface {
	OnTick(s Snapshot) error
}

// FinishSink is a TickSink that also wants to know how the run ended.
type FinishSink interface {
	TickSink
	OnFinish(res RunResult) error
}

// TickSinkFunc adapts a function to TickSink.
type TickSinkFunc func(s Snapshot) error

func (f TickSinkFunc) OnTick(s Snapshot) error { return f(s) }

// Runner drives an Engine on a real-time interval and fans snapshots out to
// sinks. The interval only paces output; model time is the tick count.
// Readers on other goroutines access the engine through View.
type Runner struct {
	engine   *Engine
	logger   *logger.Logger
	metrics  *metrics.Collector
	interval time.Duration // 0 runs as fast as possible
	maxTicks int
	sinks    []TickSink

	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRunner creates a runner that advances e at most maxTicks times.
func NewRunner(e *Engine, log *logger.Logger, interval time.Duration, maxTicks int, sinks ...TickSink) *Runner {
	return &Runner{
		engine:   e,
		logger:   log,
		metrics:  metrics.Get(),
		interval: interval,
		maxTicks: maxTicks,
		sinks:    sinks,
		stopChan: make(chan struct{}),
	}
}

// SetMetrics replaces the global metrics collector.
func (r *Runner) SetMetrics(c *metrics.Collector) {
	r.metrics = c
}

// View runs fn with read access to the engine, between ticks.
func (r *Runner) View(fn func(e *Engine)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.engine)
}

// Start runs the loop until the horizon, early stop, Stop or ctx ends it.
// It blocks; call it in a goroutine for servers.
func (r *Runner) Start(ctx context.Context) (RunResult, error) {
	var res RunResult
	r.metrics.RecordRun(true)
	r.logger.Info("Runner started", "ticks", r.maxTicks, "interval", r.interval, "seed", r.engine.Seed())

	r.publish(r.engine.Snapshot())

	var tickC <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	var err error
loop:
	for res.Ticks < r.maxTicks {
		if tickC != nil {
			select {
			case <-ctx.Done():
			case <-r.stopChan:
			case <-tickC:
			}
		}
		select {
		case <-ctx.Done():
			res.Cancelled = true
			err = ctx.Err()
			r.logger.Warn("Runner stopped by context.", "tick", r.engine.Tick())
			break loop
		case <-r.stopChan:
			res.Cancelled = true
			r.logger.Info("Runner stopped manually.", "tick", r.engine.Tick())
			break loop
		default:
		}

		snap, stopped := r.tick()
		if stopped {
			res.StoppedEarly = true
			r.logger.Info("Early stop: no infected agents left", "tick", r.engine.Tick())
			break
		}
		res.Ticks++
		r.publish(snap)
	}

	r.finish(res)
	r.metrics.RecordRun(false)
	r.logger.Info("Runner finished", "ticks", res.Ticks, "stopped_early", res.StoppedEarly, "cancelled", res.Cancelled)
	return res, err
}

// Stop ends the loop after the current tick.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

// tick advances the engine once under the write lock.
func (r *Runner) tick() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine.Done() {
		return Snapshot{}, true
	}
	start := time.Now()
	snap := r.engine.Step()
	r.metrics.RecordTick(time.Since(start))
	r.metrics.RecordEpidemic(snap.NewCases, snap.NewRecoveries, snap.Deaths, r.vaccinationsDelta(snap), snap.Infected)
	return snap, false
}

func (r *Runner) vaccinationsDelta(snap Snapshot) int {
	prev, ok := r.engine.History().Row(r.engine.History().Len() - 2)
	if !ok {
		return snap.Vaccinations
	}
	return snap.Vaccinations - prev.Vaccinations
}

// publish hands snap to every sink. Sink errors are logged, not fatal.
func (r *Runner) publish(snap Snapshot) {
	for _, s := range r.sinks {
		if err := s.OnTick(snap); err != nil {
			r.logger.Error("Tick sink failed", "tick", snap.Tick, "err", err)
		}
	}
}

func (r *Runner) finish(res RunResult) {
	r.mu.Lock()
	r.engine.w.record(events.EventTypeRunFinished, events.NoAgent, events.NoAgent, res)
	r.mu.Unlock()

	for _, s := range r.sinks {
		fs, ok := s.(FinishSink)
		if !ok {
			continue
		}
		if err := fs.OnFinish(res); err != nil {
			r.logger.Error("Finish sink failed", "err", err)
		}
	}
}
