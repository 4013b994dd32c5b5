// Package history stores benchmark runs in a SQLite database so that
// measurements can be aggregated across sessions.
package history

import (
	"context"
	"database/sql"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/m-lab/rendersim/pkg/bench1/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS bench_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	mid        TEXT    NOT NULL,
	run_id     INTEGER NOT NULL,
	item_count INTEGER NOT NULL,
	slow_mode  INTEGER NOT NULL,
	strategy   TEXT    NOT NULL,
	render_ms  REAL    NOT NULL,
	rank       INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bench_runs_items ON bench_runs (item_count, strategy);
`

// Average aggregates the measurements of one strategy.
type Average struct {
	Strategy model.Strategy `json:"strategy"`
	Runs     int            `json:"runs"`
	MeanMs   float64        `json:"meanMs"`
	MinMs    float64        `json:"minMs"`
	MaxMs    float64        `json:"maxMs"`
}

// Store is a SQLite-backed history of benchmark runs.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	insert, err := db.Prepare(`INSERT INTO bench_runs
		(mid, run_id, item_count, slow_mode, strategy, render_ms, rank, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, insert: insert}, nil
}

// Insert stores every strategy result of run in a single transaction.
func (s *Store) Insert(ctx context.Context, mid string, run model.BenchmarkRun, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt := tx.StmtContext(ctx, s.insert)
	for _, r := range run.Results {
		_, err := stmt.ExecContext(ctx, mid, run.RunID, run.ItemCount, run.SlowMode,
			string(r.Strategy), r.RenderMs, r.Rank, at.UnixMilli())
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Averages aggregates every stored run with the given item count, in
// strategy order. Strategies without runs are omitted.
func (s *Store) Averages(ctx context.Context, itemCount int) ([]Average, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT strategy, COUNT(*), AVG(render_ms),
		MIN(render_ms), MAX(render_ms) FROM bench_runs WHERE item_count = ?
		GROUP BY strategy`, itemCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byStrategy := map[model.Strategy]Average{}
	for rows.Next() {
		var a Average
		var strategy string
		if err := rows.Scan(&strategy, &a.Runs, &a.MeanMs, &a.MinMs, &a.MaxMs); err != nil {
			return nil, err
		}
		a.Strategy = model.Strategy(strategy)
		byStrategy[a.Strategy] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]Average, 0, len(byStrategy))
	for _, st := range model.Strategies {
		if a, ok := byStrategy[st]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.insert.Close()
	return s.db.Close()
}
