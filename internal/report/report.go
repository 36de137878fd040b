// Package report renders stored runs and their summaries as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-tennis-features/internal/storage"
)

var (
	cHeader = color.New(color.FgCyan, color.Bold)
	cMuted  = color.New(color.Faint)
	cWarn   = color.New(color.FgYellow)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(f float64) string { return fmt.Sprintf("%.1f%%", 100*f) }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintRunList prints one line per stored run.
func PrintRunList(w io.Writer, runs []storage.Run) {
	table := newTable(w)
	table.Header("ID", "CREATED", "YEARS", "SEED", "PRIMING", "RANKINGS", "ROLL_N", "ROWS", "P1_WIN%")
	for _, r := range runs {
		rankings := "no"
		if r.Rankings {
			rankings = "yes"
		}
		winPct := "-"
		if r.Rows > 0 {
			winPct = pct(float64(r.P1Wins) / float64(r.Rows))
		}
		table.Append(
			shortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d-%d", r.YearFrom, r.YearTo),
			strconv.FormatInt(r.Seed, 10),
			r.Priming,
			rankings,
			strconv.Itoa(r.RollN),
			strconv.Itoa(r.Rows),
			winPct,
		)
	}
	table.Render()
}

// PrintRunHeader prints the settings and totals of a run.
func PrintRunHeader(w io.Writer, r storage.Run, o storage.Overview) {
	cHeader.Fprintf(w, "\nRun %s\n", r.ID)
	fmt.Fprintf(w, "Years: %d-%d  |  Seed: %d  |  Priming: %s  |  Rankings: %t  |  Roll N: %d\n",
		r.YearFrom, r.YearTo, r.Seed, r.Priming, r.Rankings, r.RollN)
	if r.Output != "" {
		cMuted.Fprintf(w, "Output: %s\n", r.Output)
	}
	if o.Rows == 0 {
		cWarn.Fprintln(w, "No rows stored for this run.")
		return
	}
	fmt.Fprintf(w, "Rows: %d  |  P1 wins: %s  |  Players: %d  |  Dates: %s to %s\n\n",
		o.Rows, pct(float64(o.P1Wins)/float64(o.Rows)), o.Players, o.From, o.To)
}

// PrintBreakdownTable prints a grouped summary under title.
func PrintBreakdownTable(w io.Writer, title string, groups []storage.Group) {
	cHeader.Fprintf(w, "%s\n", title)
	table := newTable(w)
	table.Header("KEY", "ROWS", "P1_WIN%", "MEAN_|ELO|", "ELO_ACC%")
	for _, g := range groups {
		table.Append(
			g.Key,
			strconv.Itoa(g.Rows),
			pct(g.P1WinRate),
			fmt.Sprintf("%.1f", g.MeanAbsElo),
			pct(g.EloAccuracy),
		)
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintCoverageTable prints how often each optional column is populated.
func PrintCoverageTable(w io.Writer, cov []storage.Coverage) {
	cHeader.Fprintln(w, "Optional column coverage")
	table := newTable(w)
	table.Header("COLUMN", "PRESENT", "SHARE")
	for _, c := range cov {
		table.Append(c.Column, strconv.Itoa(c.Present), pct(c.Share))
	}
	table.Render()
}

// PrintQueryTable prints the result of a raw query.
func PrintQueryTable(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		cMuted.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
