package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-tennis-features/internal/model"
)

// Run is one stored dataset build and the settings it was produced with.
type Run struct {
	ID        string
	CreatedAt time.Time
	YearFrom  int
	YearTo    int
	Seed      int64
	Priming   string
	Rankings  bool
	RollN     int
	Output    string
	Rows      int
	P1Wins    int
}

const runColumns = `id, created_at, year_from, year_to, seed, priming, rankings, roll_n, output, row_count, p1_wins`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var r Run
	var created string
	var rankings int
	if err := sc.Scan(&r.ID, &created, &r.YearFrom, &r.YearTo, &r.Seed, &r.Priming,
		&rankings, &r.RollN, &r.Output, &r.Rows, &r.P1Wins); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	r.Rankings = rankings != 0
	return r, nil
}

// ListRuns returns all stored runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.conn.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the first run whose id starts with prefix. It returns
// nil, nil when nothing matches.
func (db *DB) GetRunByPrefix(prefix string) (*Run, error) {
	r, err := scanRun(db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY id LIMIT 1`, prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRun removes a run and its rows.
func (db *DB) DeleteRun(id string) error {
	res, err := db.conn.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// RunWriter stores the rows of one build inside a single transaction. Rows
// become visible only after Commit.
type RunWriter struct {
	run  Run
	tx   *sql.Tx
	stmt *sql.Stmt
	seq  int
	wins int
}

var insertRowSQL = fmt.Sprintf(`INSERT INTO dataset_rows(run_id, seq, %s) VALUES (?, ?%s)`,
	strings.Join(model.Columns, ", "), strings.Repeat(", ?", len(model.Columns)))

// BeginRun records run and returns a writer for its rows. A new id is
// assigned when run.ID is empty and CreatedAt defaults to now.
func (db *DB) BeginRun(run Run) (*RunWriter, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(`INSERT INTO runs(`+runColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.YearFrom, run.YearTo, run.Seed,
		run.Priming, boolInt(run.Rankings), run.RollN, run.Output, 0, 0)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.Prepare(insertRowSQL)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &RunWriter{run: run, tx: tx, stmt: stmt}, nil
}

// ID returns the id of the run being written.
func (w *RunWriter) ID() string { return w.run.ID }

// Write inserts one row.
func (w *RunWriter) Write(r model.Row) error {
	args := make([]any, 0, len(model.Columns)+2)
	args = append(args, w.run.ID, w.seq)
	args = append(args, r.Values()...)
	if _, err := w.stmt.Exec(args...); err != nil {
		return fmt.Errorf("insert dataset row %d: %w", w.seq, err)
	}
	w.seq++
	w.wins += r.P1Win
	return nil
}

// Commit stores the row counts on the run and commits the transaction.
func (w *RunWriter) Commit() (Run, error) {
	defer w.stmt.Close()
	w.run.Rows, w.run.P1Wins = w.seq, w.wins
	if _, err := w.tx.Exec(`UPDATE runs SET row_count = ?, p1_wins = ? WHERE id = ?`,
		w.run.Rows, w.run.P1Wins, w.run.ID); err != nil {
		w.tx.Rollback()
		return Run{}, err
	}
	if err := w.tx.Commit(); err != nil {
		return Run{}, err
	}
	return w.run, nil
}

// Rollback discards the run and every row written so far.
func (w *RunWriter) Rollback() error {
	w.stmt.Close()
	return w.tx.Rollback()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
