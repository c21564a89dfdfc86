// Package history persists trial records to a SQLite database so runs can
// be compared after the fact. The store implements search.Sink; insert
// failures are logged and swallowed because losing one history row must
// never abort an in-flight search.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"obforge/internal/logging"
	"obforge/internal/search"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	compiler    TEXT NOT NULL,
	provider    TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS trials (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	idx          INTEGER NOT NULL,
	flags        TEXT NOT NULL,
	compiled     INTEGER NOT NULL,
	diagnostic   TEXT,
	score        REAL NOT NULL,
	accepted     INTEGER NOT NULL,
	improvement  REAL NOT NULL,
	metrics      TEXT,
	recorded_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// RunInfo describes the run a trial stream belongs to.
type RunInfo struct {
	ID       string
	Source   string
	Compiler string
	Provider string
	Strategy string
}

// Store is a SQLite-backed trial sink.
type Store struct {
	db    *sql.DB
	runID string
}

// Open creates or opens the database at path, applies the schema and
// registers the run. A store that cannot open is an environment failure.
func Open(path string, info RunInfo) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO runs (id, source, compiler, provider, strategy, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.Source, info.Compiler, info.Provider, info.Strategy, time.Now().UTC(),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register run %s: %w", info.ID, err)
	}

	logging.History("Opened history store %s for run %s", path, info.ID)
	return &Store{db: db, runID: info.ID}, nil
}

// RecordTrial persists one trial row. Implements search.Sink.
func (s *Store) RecordTrial(rec search.Record) error {
	var metricsJSON any
	if rec.Metrics != nil {
		raw, err := json.Marshal(rec.Metrics)
		if err != nil {
			logging.HistoryWarn("Trial %d: metrics not serializable: %v", rec.Index, err)
		} else {
			metricsJSON = string(raw)
		}
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO trials
		   (run_id, idx, flags, compiled, diagnostic, score, accepted, improvement, metrics, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, rec.Index, strings.Join(rec.Flags, " "), boolInt(rec.Compiled),
		rec.Diagnostic, rec.Score, boolInt(rec.Accepted), rec.Improvement,
		metricsJSON, time.Now().UTC(),
	)
	if err != nil {
		logging.HistoryWarn("Trial %d: insert failed: %v", rec.Index, err)
	}
	return nil
}

// TrialRow is a persisted trial as read back from the store.
type TrialRow struct {
	RunID      string
	Index      int
	Flags      string
	Compiled   bool
	Diagnostic string
	Score      float64
	Accepted   bool
}

// TopTrials returns the best-scoring compiled trials for a run, highest
// score first, ties broken by generation index.
func (s *Store) TopTrials(runID string, limit int) ([]TrialRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, idx, flags, compiled, diagnostic, score, accepted
		   FROM trials
		  WHERE run_id = ? AND compiled = 1
		  ORDER BY score DESC, idx ASC
		  LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []TrialRow
	for rows.Next() {
		var r TrialRow
		var compiled, accepted int
		var diagnostic sql.NullString
		if err := rows.Scan(&r.RunID, &r.Index, &r.Flags, &compiled, &diagnostic, &r.Score, &accepted); err != nil {
			return nil, fmt.Errorf("failed to scan trial row: %w", err)
		}
		r.Compiled = compiled != 0
		r.Accepted = accepted != 0
		r.Diagnostic = diagnostic.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
