package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
)

// SQLiteHistoryRepository implements HistoryRepository for SQLite.
type SQLiteHistoryRepository struct {
	db *sqlx.DB
}

func NewSQLiteHistoryRepository(db *sqlx.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

func (r *SQLiteHistoryRepository) CreateRun(ctx context.Context, cfg scenario.Config) (int64, error) {
	configBytes, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `
		INSERT INTO runs (mode, seed, population, config, started_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		string(cfg.Mode), int64(cfg.Seed), cfg.Population, string(configBytes), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return res.LastInsertId()
}

// tickRow binds a snapshot to its run for named inserts.
type tickRow struct {
	RunID int64 `db:"run_id"`
	engine.Snapshot
}

const tickColumns = `tick, susceptible, infected, recovered, immune, dead,
	total_infections, vaccinations, new_cases, new_recoveries, deaths, cumulative_cases,
	prevalence, incidence,
	prev_age, prev_genetic, prev_tobacco, prev_diet, prev_activity, prev_alcohol, prev_lifestyle`

func (r *SQLiteHistoryRepository) AppendRow(ctx context.Context, runID int64, s engine.Snapshot) error {
	query := `
		INSERT INTO tick_history (run_id, ` + tickColumns + `)
		VALUES (:run_id, :tick, :susceptible, :infected, :recovered, :immune, :dead,
			:total_infections, :vaccinations, :new_cases, :new_recoveries, :deaths, :cumulative_cases,
			:prevalence, :incidence,
			:prev_age, :prev_genetic, :prev_tobacco, :prev_diet, :prev_activity, :prev_alcohol, :prev_lifestyle)
	`
	if _, err := r.db.NamedExecContext(ctx, query, tickRow{RunID: runID, Snapshot: s}); err != nil {
		return fmt.Errorf("failed to append row for tick %d: %w", s.Tick, err)
	}
	return nil
}

func (r *SQLiteHistoryRepository) FinishRun(ctx context.Context, runID int64, res engine.RunResult) error {
	query := `
		UPDATE runs SET finished_at = ?, ticks = ?, stopped_early = ?, cancelled = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), res.Ticks, res.StoppedEarly, res.Cancelled, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to finish run %d: no such run", runID)
	}
	return nil
}

const runColumns = `id, mode, seed, population, config, started_at, finished_at, ticks, stopped_early, cancelled`

func (r *SQLiteHistoryRepository) GetRun(ctx context.Context, runID int64) (*Run, error) {
	var run Run
	err := r.db.GetContext(ctx, &run, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *SQLiteHistoryRepository) ListRuns(ctx context.Context) ([]Run, error) {
	var runs []Run
	if err := r.db.SelectContext(ctx, &runs, `SELECT `+runColumns+` FROM runs ORDER BY id DESC`); err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *SQLiteHistoryRepository) GetRows(ctx context.Context, runID int64, fromTick int) ([]engine.Snapshot, error) {
	query := `SELECT ` + tickColumns + ` FROM tick_history WHERE run_id = ? AND tick >= ? ORDER BY tick ASC`
	var rows []engine.Snapshot
	if err := r.db.SelectContext(ctx, &rows, query, runID, fromTick); err != nil {
		return nil, err
	}
	return rows, nil
}

// DecodeConfig returns the configuration a run was started with.
func DecodeConfig(run *Run) (scenario.Config, error) {
	var cfg scenario.Config
	if err := json.Unmarshal([]byte(run.Config), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode run config: %w", err)
	}
	return cfg, nil
}
