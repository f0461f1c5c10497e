// Package storage provides the persistence layer for simulation runs.
// Only run metadata and per-tick summary rows are stored; agent state
// never leaves the engine.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
)

// Run is the metadata of one simulation run.
type Run struct {
	ID           int64        `json:"id" db:"id"`
	Mode         string       `json:"mode" db:"mode"`
	Seed         int64        `json:"seed" db:"seed"` // bit pattern of the uint64 seed
	Population   int          `json:"population" db:"population"`
	Config       string       `json:"config" db:"config"` // JSON-encoded scenario.Config
	StartedAt    time.Time    `json:"started_at" db:"started_at"`
	FinishedAt   sql.NullTime `json:"-" db:"finished_at"`
	Ticks        int          `json:"ticks" db:"ticks"`
	StoppedEarly bool         `json:"stopped_early" db:"stopped_early"`
	Cancelled    bool         `json:"cancelled" db:"cancelled"`
}

// SeedValue returns the original unsigned seed.
func (r Run) SeedValue() uint64 {
	return uint64(r.Seed)
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool {
	return r.FinishedAt.Valid
}

// HistoryRepository defines the interface for run and tick-row persistence.
// The engine never sees this; the Runner reaches it through a HistorySink.
type HistoryRepository interface {
	// CreateRun registers a new run and returns its ID.
	CreateRun(ctx context.Context, cfg scenario.Config) (int64, error)

	// AppendRow stores one history row of a run.
	AppendRow(ctx context.Context, runID int64, s engine.Snapshot) error

	// FinishRun records how a run ended.
	FinishRun(ctx context.Context, runID int64, res engine.RunResult) error

	// GetRun retrieves one run, or nil if it does not exist.
	GetRun(ctx context.Context, runID int64) (*Run, error)

	// ListRuns retrieves every run, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// GetRows retrieves the rows of a run with tick >= fromTick, in tick order.
	GetRows(ctx context.Context, runID int64, fromTick int) ([]engine.Snapshot, error)
}
