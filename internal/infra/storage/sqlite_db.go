package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite opens the local SQLite database and creates the schemas for
// run metadata and tick history.
func InitSQLite(dbPath string) (*sqlx.DB, error) {
	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite has a single writer; an in-memory database is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

// ConfigurePool applies connection pool limits. maxOpen <= 0 leaves the
// single-connection default.
func ConfigurePool(db *sqlx.DB, maxOpen, maxIdle int) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
}

func createSchemas(db *sqlx.DB) error {
	schemas := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL,
			population INTEGER NOT NULL,
			config TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			ticks INTEGER NOT NULL DEFAULT 0,
			stopped_early BOOLEAN NOT NULL DEFAULT 0,
			cancelled BOOLEAN NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS tick_history (
			run_id INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			susceptible INTEGER NOT NULL,
			infected INTEGER NOT NULL,
			recovered INTEGER NOT NULL,
			immune INTEGER NOT NULL,
			dead INTEGER NOT NULL,
			total_infections INTEGER NOT NULL,
			vaccinations INTEGER NOT NULL,
			new_cases INTEGER NOT NULL,
			new_recoveries INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			cumulative_cases INTEGER NOT NULL,
			prevalence REAL NOT NULL,
			incidence REAL NOT NULL,
			prev_age REAL NOT NULL,
			prev_genetic REAL NOT NULL,
			prev_tobacco REAL NOT NULL,
			prev_diet REAL NOT NULL,
			prev_activity REAL NOT NULL,
			prev_alcohol REAL NOT NULL,
			prev_lifestyle REAL NOT NULL,
			PRIMARY KEY (run_id, tick),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
