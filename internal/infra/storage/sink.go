package storage

import (
	"context"
	"time"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/platform/metrics"
)

// HistorySink persists every snapshot of one run. It implements
// engine.FinishSink so a Runner can drive it.
type HistorySink struct {
	ctx     context.Context
	repo    HistoryRepository
	runID   int64
	metrics *metrics.Collector
}

// NewHistorySink registers a run for cfg and returns a sink writing to it.
func NewHistorySink(ctx context.Context, repo HistoryRepository, cfg scenario.Config, m *metrics.Collector) (*HistorySink, error) {
	runID, err := repo.CreateRun(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.Get()
	}
	return &HistorySink{ctx: ctx, repo: repo, runID: runID, metrics: m}, nil
}

// RunID is the ID of the run being recorded.
func (s *HistorySink) RunID() int64 {
	return s.runID
}

func (s *HistorySink) OnTick(snap engine.Snapshot) error {
	start := time.Now()
	err := s.repo.AppendRow(s.ctx, s.runID, snap)
	s.metrics.RecordRowWrite(time.Since(start), err)
	return err
}

func (s *HistorySink) OnFinish(res engine.RunResult) error {
	// the run context may already be cancelled; record the outcome anyway
	return s.repo.FinishRun(context.WithoutCancel(s.ctx), s.runID, res)
}
