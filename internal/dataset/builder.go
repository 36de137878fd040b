// Package dataset drives the single chronological pass that turns match
// records into pre-match feature rows.
//
// For every match the builder first reads each tracker, then emits a row,
// then feeds the actual result back into every tracker. Nothing written for
// match i is visible before the reads of match i+1.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/pable/go-tennis-features/internal/model"
	"github.com/pable/go-tennis-features/internal/rankings"
	"github.com/pable/go-tennis-features/internal/rating"
	"github.com/pable/go-tennis-features/internal/tracker"
)

var (
	// ErrNoMatches is returned when there is no main-draw match to process.
	ErrNoMatches = errors.New("no matches to process")
	// ErrNotChronological is returned when an input sequence is not sorted
	// by date, tournament id and match number.
	ErrNotChronological = errors.New("matches not in chronological order")
)

// PrimingMode selects how update-only matches are applied.
type PrimingMode string

const (
	PrimingOff PrimingMode = "off"
	// PrimingInterleaved applies each priming match at its own position in
	// the chronological stream.
	PrimingInterleaved PrimingMode = "interleaved"
	// PrimingPrepass applies every priming match before the first main match.
	PrimingPrepass PrimingMode = "prepass"
)

// ParsePrimingMode validates a priming mode name.
func ParsePrimingMode(s string) (PrimingMode, error) {
	switch m := PrimingMode(s); m {
	case PrimingOff, PrimingInterleaved, PrimingPrepass:
		return m, nil
	}
	return "", fmt.Errorf("unknown priming mode %q (want off, interleaved or prepass)", s)
}

// Fatigue windows read for every match, in days.
const (
	window7  = 7
	window14 = 14
	window30 = 30
)

// Options configures a build.
type Options struct {
	Seed              int64
	Priming           PrimingMode
	DefaultRank       float64
	DefaultRankPoints float64
	RollN             int
}

// DefaultOptions mirrors the defaults of the build command.
func DefaultOptions() Options {
	return Options{
		Seed:              7,
		Priming:           PrimingOff,
		DefaultRank:       2000,
		DefaultRankPoints: 0,
		RollN:             tracker.DefaultRollN,
	}
}

// RowSink receives rows in emission order.
type RowSink interface {
	Write(model.Row) error
}

// Stats summarizes a finished build.
type Stats struct {
	Rows   int
	P1Wins int
	Primed int
}

// Builder builds datasets. Each Build call starts from empty tracker state,
// so identical inputs and seed give identical rows.
type Builder struct {
	opts   Options
	ranks  *rankings.Index
	logger *zap.Logger
}

// New returns a Builder. A nil index disables ranking lookups; a nil logger
// discards log output.
func New(opts Options, ranks *rankings.Index, logger *zap.Logger) *Builder {
	if ranks == nil {
		ranks = rankings.Empty()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RollN <= 0 {
		opts.RollN = tracker.DefaultRollN
	}
	if opts.Priming == "" {
		opts.Priming = PrimingOff
	}
	return &Builder{opts: opts, ranks: ranks, logger: logger}
}

// state is every tracker touched by one build.
type state struct {
	elo     *rating.Engine
	form    *tracker.Form
	fatigue *tracker.Fatigue
	h2h     *tracker.HeadToHead
	serve   *tracker.ServeStats
	load    *tracker.TournamentLoad
}

func newState() *state {
	return &state{
		elo:     rating.NewEngine(),
		form:    tracker.NewForm(),
		fatigue: tracker.NewFatigue(),
		h2h:     tracker.NewHeadToHead(),
		serve:   tracker.NewServeStats(),
		load:    tracker.NewTournamentLoad(),
	}
}

// Build processes main and priming, both of which must already be sorted
// (see model.SortMatches), and writes one row per main match to sink.
// Priming matches only update state and are ignored when the mode is off.
// An unknown priming mode is an error.
func (b *Builder) Build(main, priming []model.Match, sink RowSink) (Stats, error) {
	var st Stats
	if _, err := ParsePrimingMode(string(b.opts.Priming)); err != nil {
		return st, err
	}
	if len(main) == 0 {
		return st, ErrNoMatches
	}
	if err := checkOrder(main); err != nil {
		return st, fmt.Errorf("main draw: %w", err)
	}
	if b.opts.Priming == PrimingOff {
		priming = nil
	}
	if err := checkOrder(priming); err != nil {
		return st, fmt.Errorf("priming: %w", err)
	}

	s := newState()
	rng := rand.New(rand.NewSource(b.opts.Seed))

	prime := func(m model.Match) {
		s.decay(m)
		s.update(m)
		st.Primed++
	}

	j := 0
	if b.opts.Priming == PrimingPrepass {
		for _, m := range priming {
			prime(m)
		}
		j = len(priming)
	}

	for i, m := range main {
		for ; j < len(priming) && !m.Before(priming[j]); j++ {
			prime(priming[j])
		}

		row := b.features(s, m, rng.Float64() < 0.5)
		if err := sink.Write(row); err != nil {
			return st, fmt.Errorf("write row %d: %w", i, err)
		}
		st.Rows++
		st.P1Wins += row.P1Win
		s.update(m)

		if st.Rows%50000 == 0 {
			b.logger.Debug("build progress", zap.Int("rows", st.Rows), zap.Time("date", m.Date))
		}
	}
	// Trailing priming matches cannot affect any row.

	b.logger.Info("dataset built",
		zap.Int("rows", st.Rows),
		zap.Int("p1_wins", st.P1Wins),
		zap.Int("primed", st.Primed),
		zap.String("priming", string(b.opts.Priming)))
	return st, nil
}

func checkOrder(ms []model.Match) error {
	for i := 1; i < len(ms); i++ {
		if ms[i].Before(ms[i-1]) {
			return fmt.Errorf("%w: record %d (%s %s #%d) sorts before record %d",
				ErrNotChronological, i, ms[i].Date.Format("2006-01-02"), ms[i].TourneyID, ms[i].MatchNum, i-1)
		}
	}
	return nil
}

// decay applies rest-based rating decay to both players and returns their
// pre-update rest days.
func (s *state) decay(m model.Match) (wRest, lRest int) {
	wRest = s.fatigue.RestDays(m.WinnerID, m.Date, tracker.RestCap)
	lRest = s.fatigue.RestDays(m.LoserID, m.Date, tracker.RestCap)
	s.elo.Decay(m.WinnerID, wRest)
	s.elo.Decay(m.LoserID, lRest)
	return wRest, lRest
}

// update feeds the actual result of m into every tracker.
func (s *state) update(m model.Match) {
	w, l := m.WinnerID, m.LoserID
	s.elo.Record(w, l, m.Level, m.Surface)
	s.fatigue.Prune(w, m.Date, window30)
	s.fatigue.Prune(l, m.Date, window30)
	s.fatigue.Record(w, l, m.Date)
	s.form.Record(w, l)
	s.h2h.Record(m.Surface, w, l)
	s.serve.Record(m)
	s.load.Record(m.TourneyID, w, l, m.Minutes)
}
