package storage

import (
	"fmt"
)

// Overview describes the rows of a stored run.
type Overview struct {
	Rows     int
	P1Wins   int
	Players  int
	From, To string
}

// RunOverview aggregates totals for a run.
func (db *DB) RunOverview(runID string) (Overview, error) {
	var o Overview
	var from, to *string
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(y_p1_win), 0), MIN(date), MAX(date)
		FROM dataset_rows WHERE run_id = ?`, runID).Scan(&o.Rows, &o.P1Wins, &from, &to)
	if err != nil {
		return o, err
	}
	if from != nil {
		o.From = *from
	}
	if to != nil {
		o.To = *to
	}
	err = db.conn.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT p1_id FROM dataset_rows WHERE run_id = ?
			UNION
			SELECT p2_id FROM dataset_rows WHERE run_id = ?
		)`, runID, runID).Scan(&o.Players)
	return o, err
}

// Group is one bucket of a breakdown.
type Group struct {
	Key         string
	Rows        int
	P1WinRate   float64
	MeanAbsElo  float64
	EloAccuracy float64 // share of rows with a non-zero elo_diff whose sign matches the label
}

// Breakdown dimensions accepted by RunBreakdown.
const (
	BySurface = "surface"
	ByLevel   = "tourney_level"
	ByYear    = "year"
)

var breakdownExpr = map[string]string{
	BySurface: "surface",
	ByLevel:   "tourney_level",
	ByYear:    "substr(date, 1, 4)",
}

// RunBreakdown groups a run's rows by one of BySurface, ByLevel or ByYear.
func (db *DB) RunBreakdown(runID, by string) ([]Group, error) {
	expr, ok := breakdownExpr[by]
	if !ok {
		return nil, fmt.Errorf("unknown breakdown %q", by)
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT %[1]s AS k,
		       COUNT(*),
		       AVG(y_p1_win),
		       AVG(ABS(elo_diff)),
		       COALESCE(AVG(CASE WHEN elo_diff = 0 THEN NULL
		                         WHEN (elo_diff > 0) = (y_p1_win = 1) THEN 1.0
		                         ELSE 0.0 END), 0)
		FROM dataset_rows WHERE run_id = ?
		GROUP BY k ORDER BY COUNT(*) DESC, k`, expr), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.Key, &g.Rows, &g.P1WinRate, &g.MeanAbsElo, &g.EloAccuracy); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// NullableColumns are the dataset columns that may be missing.
var NullableColumns = []string{
	"best_of",
	"rank_d4_diff", "rank_points_d4_diff",
	"rank_d8_diff", "rank_points_d8_diff",
	"seed_diff",
}

// Coverage is the share of a run's rows with a value in Column.
type Coverage struct {
	Column  string
	Present int
	Share   float64
}

// RunCoverage reports how often each nullable column is populated.
func (db *DB) RunCoverage(runID string) ([]Coverage, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM dataset_rows WHERE run_id = ?`, runID).Scan(&total); err != nil {
		return nil, err
	}
	out := make([]Coverage, 0, len(NullableColumns))
	for _, col := range NullableColumns {
		c := Coverage{Column: col}
		q := fmt.Sprintf(`SELECT COUNT(%s) FROM dataset_rows WHERE run_id = ?`, col)
		if err := db.conn.QueryRow(q, runID).Scan(&c.Present); err != nil {
			return nil, fmt.Errorf("coverage %s: %w", col, err)
		}
		if total > 0 {
			c.Share = float64(c.Present) / float64(total)
		}
		out = append(out, c)
	}
	return out, nil
}

// QueryRaw runs an arbitrary query and returns column names and every row
// formatted as text. NULL values come back as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var out [][]string
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				rec[i] = "NULL"
			case []byte:
				rec[i] = string(x)
			default:
				rec[i] = fmt.Sprint(x)
			}
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}
