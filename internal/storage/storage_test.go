package storage

import (
	"testing"
	"time"

	"github.com/pable/go-tennis-features/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(date string, surface model.Surface, level string, elo float64, win int) model.Row {
	d, _ := time.Parse("2006-01-02", date)
	return model.Row{
		Date:         d,
		TourneyID:    "t1",
		TourneyLevel: level,
		Surface:      surface,
		Round:        "R32",
		P1ID:         1,
		P2ID:         2,
		P1Win:        win,
		EloDiff:      elo,
		EntryP1:      model.EntryNone,
		EntryP2:      model.EntryNone,
	}
}

func storeRun(t *testing.T, db *DB, run Run, rows ...model.Row) Run {
	t.Helper()
	w, err := db.BeginRun(run)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	stored, err := w.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return stored
}

func TestSchemaMatchesColumns(t *testing.T) {
	db := openMemDB(t)
	cols, rows, err := db.QueryRaw(`SELECT name FROM pragma_table_info('dataset_rows')`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 1 {
		t.Fatalf("expected 1 column, got %v", cols)
	}
	if len(rows) != len(model.Columns)+2 {
		t.Fatalf("expected %d columns, got %d", len(model.Columns)+2, len(rows))
	}
	for i, c := range model.Columns {
		if got := rows[i+2][0]; got != c {
			t.Errorf("column %d: expected %s, got %s", i, c, got)
		}
	}
}

func TestRunRoundTrip(t *testing.T) {
	db := openMemDB(t)

	r := row("2019-01-14", model.SurfaceHard, "G", 12.5, 1)
	r.RankD4Diff = model.Float(-3)
	r.BestOf = model.Float(5)
	stored := storeRun(t, db, Run{YearFrom: 2010, YearTo: 2019, Seed: 7, Priming: "off", Rankings: true, RollN: 20}, r)

	if stored.ID == "" {
		t.Fatal("expected an assigned run id")
	}
	if stored.Rows != 1 || stored.P1Wins != 1 {
		t.Errorf("expected 1 row and 1 win, got %d/%d", stored.Rows, stored.P1Wins)
	}

	got, err := db.GetRunByPrefix(stored.ID[:8])
	if err != nil {
		t.Fatalf("GetRunByPrefix: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.ID != stored.ID || got.Seed != 7 || !got.Rankings || got.Rows != 1 || got.YearTo != 2019 {
		t.Errorf("unexpected run: %+v", got)
	}

	_, rows, err := db.QueryRaw(`SELECT date, best_of, rank_d4_diff, rank_d8_diff, seed_diff, elo_diff, entry_p1 FROM dataset_rows`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := []string{"2019-01-14", "5", "-3", "NULL", "NULL", "12.5", "NONE"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("cell %d: expected %s, got %s", i, w, rows[0][i])
		}
	}
}

func TestGetRunByPrefixNoMatch(t *testing.T) {
	db := openMemDB(t)
	got, err := db.GetRunByPrefix("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openMemDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	storeRun(t, db, Run{ID: "old", CreatedAt: base, Priming: "off", RollN: 20})
	storeRun(t, db, Run{ID: "new", CreatedAt: base.Add(time.Hour), Priming: "off", RollN: 20})

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "new" {
		t.Errorf("expected newest first, got %s", runs[0].ID)
	}
	if !runs[1].CreatedAt.Equal(base) {
		t.Errorf("created_at round trip: got %v", runs[1].CreatedAt)
	}
}

func TestRollbackDiscardsRun(t *testing.T) {
	db := openMemDB(t)
	w, err := db.BeginRun(Run{ID: "gone", Priming: "off", RollN: 20})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := w.Write(row("2019-01-14", model.SurfaceHard, "A", 1, 1)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	runs, err := db.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after rollback, got %d", len(runs))
	}
}

func TestDeleteRunCascades(t *testing.T) {
	db := openMemDB(t)
	storeRun(t, db, Run{ID: "r1", Priming: "off", RollN: 20},
		row("2019-01-14", model.SurfaceHard, "A", 1, 1),
		row("2019-01-15", model.SurfaceHard, "A", 1, 0))

	if err := db.DeleteRun("r1"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	_, rows, err := db.QueryRaw(`SELECT COUNT(*) FROM dataset_rows`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "0" {
		t.Errorf("expected rows to be deleted with the run, got %s", rows[0][0])
	}
	if err := db.DeleteRun("r1"); err == nil {
		t.Error("expected error deleting a missing run")
	}
}

func TestOverviewAndBreakdown(t *testing.T) {
	db := openMemDB(t)
	storeRun(t, db, Run{ID: "r1", Priming: "off", RollN: 20},
		row("2018-05-01", model.SurfaceClay, "M", 40, 1),
		row("2018-05-02", model.SurfaceClay, "M", -20, 1),
		row("2019-01-14", model.SurfaceHard, "G", 10, 0),
		row("2019-01-15", model.SurfaceClay, "A", 0, 0))

	o, err := db.RunOverview("r1")
	if err != nil {
		t.Fatalf("RunOverview: %v", err)
	}
	if o.Rows != 4 || o.P1Wins != 2 || o.Players != 2 {
		t.Errorf("unexpected overview: %+v", o)
	}
	if o.From != "2018-05-01" || o.To != "2019-01-15" {
		t.Errorf("unexpected date range: %s..%s", o.From, o.To)
	}

	groups, err := db.RunBreakdown("r1", BySurface)
	if err != nil {
		t.Fatalf("RunBreakdown: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 surfaces, got %d", len(groups))
	}
	clay := groups[0]
	if clay.Key != "Clay" || clay.Rows != 3 {
		t.Fatalf("expected Clay with 3 rows first, got %+v", clay)
	}
	// Rows with elo_diff 40 (win) and -20 (win) count; the zero diff is skipped.
	if clay.EloAccuracy != 0.5 {
		t.Errorf("expected elo accuracy 0.5, got %v", clay.EloAccuracy)
	}
	if clay.MeanAbsElo != 20 {
		t.Errorf("expected mean |elo| 20, got %v", clay.MeanAbsElo)
	}

	years, err := db.RunBreakdown("r1", ByYear)
	if err != nil {
		t.Fatalf("RunBreakdown year: %v", err)
	}
	if len(years) != 2 || years[0].Key != "2018" || years[1].Key != "2019" {
		t.Errorf("unexpected year groups: %+v", years)
	}

	if _, err := db.RunBreakdown("r1", "p1_id; DROP TABLE runs"); err == nil {
		t.Error("expected error for unknown breakdown")
	}
}

func TestRunCoverage(t *testing.T) {
	db := openMemDB(t)
	a := row("2019-01-14", model.SurfaceHard, "A", 1, 1)
	a.SeedDiff = model.Float(2)
	b := row("2019-01-15", model.SurfaceHard, "A", 1, 0)
	storeRun(t, db, Run{ID: "r1", Priming: "off", RollN: 20}, a, b)

	cov, err := db.RunCoverage("r1")
	if err != nil {
		t.Fatalf("RunCoverage: %v", err)
	}
	if len(cov) != len(NullableColumns) {
		t.Fatalf("expected %d entries, got %d", len(NullableColumns), len(cov))
	}
	for _, c := range cov {
		want := 0.0
		if c.Column == "seed_diff" {
			want = 0.5
		}
		if c.Share != want {
			t.Errorf("%s: expected share %v, got %v", c.Column, want, c.Share)
		}
	}
}
