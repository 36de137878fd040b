package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-tennis-features/internal/storage"
)

func TestPrintRunList(t *testing.T) {
	var buf bytes.Buffer
	PrintRunList(&buf, []storage.Run{{
		ID:        "0123456789abcdef",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		YearFrom:  2010,
		YearTo:    2024,
		Seed:      7,
		Priming:   "interleaved",
		Rankings:  true,
		RollN:     20,
		Rows:      200,
		P1Wins:    101,
	}})
	out := buf.String()
	for _, want := range []string{"01234567", "2010-2024", "interleaved", "yes", "50.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "89abcdef") {
		t.Error("expected run id to be shortened")
	}
}

func TestPrintRunHeaderEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintRunHeader(&buf, storage.Run{ID: "r1", Priming: "off"}, storage.Overview{})
	if !strings.Contains(buf.String(), "No rows stored") {
		t.Errorf("expected empty-run notice, got:\n%s", buf.String())
	}
}

func TestPrintBreakdownTable(t *testing.T) {
	var buf bytes.Buffer
	PrintBreakdownTable(&buf, "By surface", []storage.Group{
		{Key: "Clay", Rows: 3, P1WinRate: 2.0 / 3, MeanAbsElo: 20, EloAccuracy: 0.5},
	})
	out := buf.String()
	for _, want := range []string{"By surface", "Clay", "66.7%", "20.0", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintQueryTable(t *testing.T) {
	var buf bytes.Buffer
	PrintQueryTable(&buf, []string{"n"}, nil)
	if !strings.Contains(buf.String(), "(no rows)") {
		t.Errorf("expected no-rows notice, got %q", buf.String())
	}

	buf.Reset()
	PrintQueryTable(&buf, []string{"surface", "n"}, [][]string{{"Hard", "10"}, {"Clay", "4"}})
	out := buf.String()
	if !strings.Contains(out, "Clay") || !strings.Contains(out, "(2 rows)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
