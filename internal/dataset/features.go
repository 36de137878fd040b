package dataset

import (
	"github.com/pable/go-tennis-features/internal/model"
	"github.com/pable/go-tennis-features/internal/tracker"
)

// side is every pre-match value of one player in one match.
type side struct {
	id         int
	elo, selo  float64
	rank, pts  float64
	rankD4     *float64
	ptsD4      *float64
	rankD8     *float64
	ptsD8      *float64
	wr10, wr20 float64
	streak     int
	rest       int
	m7         int
	m14        int
	m30        int
	tMatches   int
	tMinutes   int
	seed       *float64
	entry      string
	serve      [6]float64
}

// features reads every tracker for m, decides roles and returns the row.
// It applies rest decay to both ratings but records nothing else.
func (b *Builder) features(s *state, m model.Match, winnerIsP1 bool) model.Row {
	wRest, lRest := s.decay(m)

	w := b.read(s, m, m.WinnerID, wRest, m.WinnerRank, m.WinnerRankPoints, m.WinnerSeed, m.WinnerEntry)
	l := b.read(s, m, m.LoserID, lRest, m.LoserRank, m.LoserRankPoints, m.LoserSeed, m.LoserEntry)

	p1, p2, y := l, w, 0
	if winnerIsP1 {
		p1, p2, y = w, l, 1
	}

	row := model.Row{
		Date:         m.Date,
		TourneyID:    m.TourneyID,
		TourneyLevel: m.Level,
		Surface:      m.Surface,
		Round:        m.Round,
		BestOf:       m.BestOf,
		P1ID:         p1.id,
		P2ID:         p2.id,
		P1Win:        y,

		EloDiff:        p1.elo - p2.elo,
		SurfaceEloDiff: p1.selo - p2.selo,

		RankDiff:         p1.rank - p2.rank,
		RankPointsDiff:   p1.pts - p2.pts,
		RankD4Diff:       diff(p1.rankD4, p2.rankD4),
		RankPointsD4Diff: diff(p1.ptsD4, p2.ptsD4),
		RankD8Diff:       diff(p1.rankD8, p2.rankD8),
		RankPointsD8Diff: diff(p1.ptsD8, p2.ptsD8),

		WR10Diff:   p1.wr10 - p2.wr10,
		WR20Diff:   p1.wr20 - p2.wr20,
		StreakDiff: p1.streak - p2.streak,

		RestDiff: p1.rest - p2.rest,
		M7Diff:   p1.m7 - p2.m7,
		M14Diff:  p1.m14 - p2.m14,
		M30Diff:  p1.m30 - p2.m30,

		TourneyMatchesDiff: p1.tMatches - p2.tMatches,
		TourneyMinutesDiff: p1.tMinutes - p2.tMinutes,

		// Balance is read from P1's side, which flips the sign whenever P1
		// is the actual loser.
		H2HDiff:        s.h2h.Balance(p1.id, p2.id),
		H2HSurfaceDiff: s.h2h.SurfaceBalance(m.Surface, p1.id, p2.id),

		SeedDiff: diff(p1.seed, p2.seed),
		EntryP1:  entryOrNone(p1.entry),
		EntryP2:  entryOrNone(p2.entry),

		AceRateDiff:       p1.serve[0] - p2.serve[0],
		DFRateDiff:        p1.serve[1] - p2.serve[1],
		FirstInRateDiff:   p1.serve[2] - p2.serve[2],
		FirstWonRateDiff:  p1.serve[3] - p2.serve[3],
		SecondWonRateDiff: p1.serve[4] - p2.serve[4],
		BPSavedRateDiff:   p1.serve[5] - p2.serve[5],
	}
	return row
}

func (b *Builder) read(s *state, m model.Match, pid, rest int, rank, pts, seed *float64, entry string) side {
	sd := side{
		id:       pid,
		elo:      s.elo.Global(pid),
		selo:     s.elo.Rating(pid, m.Surface),
		wr10:     s.form.WinRate(pid, 10, 0.5),
		wr20:     s.form.WinRate(pid, 20, 0.5),
		streak:   s.form.Streak(pid),
		rest:     rest,
		m7:       s.fatigue.MatchesInLastDays(pid, m.Date, window7),
		m14:      s.fatigue.MatchesInLastDays(pid, m.Date, window14),
		m30:      s.fatigue.MatchesInLastDays(pid, m.Date, window30),
		tMatches: s.load.Matches(m.TourneyID, pid),
		tMinutes: s.load.Minutes(m.TourneyID, pid),
		seed:     seed,
		entry:    entry,
	}
	sd.rank, sd.pts = b.currentRank(pid, m, rank, pts)

	if r, p, ok := b.ranks.Delta(pid, m.Date, 4); ok {
		sd.rankD4, sd.ptsD4 = &r, &p
	}
	if r, p, ok := b.ranks.Delta(pid, m.Date, 8); ok {
		sd.rankD8, sd.ptsD8 = &r, &p
	}

	for i, metric := range tracker.Metrics {
		sd.serve[i] = s.serve.Average(pid, metric, b.opts.RollN, 0.0)
	}
	return sd
}

// currentRank prefers the rank printed on the match record, then the
// ranking feed as of the match date, then the configured imputation.
func (b *Builder) currentRank(pid int, m model.Match, rank, pts *float64) (float64, float64) {
	var snapRank, snapPts *float64
	if rank == nil || pts == nil {
		if snap, ok := b.ranks.PointInTime(pid, m.Date); ok {
			snapRank, snapPts = &snap.Rank, &snap.Points
		}
	}
	return pick(rank, snapRank, b.opts.DefaultRank), pick(pts, snapPts, b.opts.DefaultRankPoints)
}

func pick(first, second *float64, def float64) float64 {
	if first != nil {
		return *first
	}
	if second != nil {
		return *second
	}
	return def
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}

func entryOrNone(e string) string {
	if e == "" {
		return model.EntryNone
	}
	return e
}
