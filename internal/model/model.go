// Package model holds the match, ranking and dataset row types shared by the
// loader, the feature trackers and the output sinks.
package model

import (
	"sort"
	"strings"
	"time"
)

// Surface is the court type a match is played on.
type Surface string

const (
	SurfaceHard    Surface = "Hard"
	SurfaceClay    Surface = "Clay"
	SurfaceGrass   Surface = "Grass"
	SurfaceCarpet  Surface = "Carpet"
	SurfaceUnknown Surface = "Unknown"
)

// Surfaces lists the surfaces that carry their own rating.
var Surfaces = []Surface{SurfaceHard, SurfaceClay, SurfaceGrass, SurfaceCarpet}

// Rated reports whether s is one of the four canonical surfaces.
func (s Surface) Rated() bool {
	switch s {
	case SurfaceHard, SurfaceClay, SurfaceGrass, SurfaceCarpet:
		return true
	}
	return false
}

// ParseSurface maps a raw surface label to a Surface. Empty input becomes
// SurfaceUnknown; any other label is kept as-is.
func ParseSurface(raw string) Surface {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SurfaceUnknown
	}
	return Surface(raw)
}

// ServeStats are the raw box-score serve counts of one player in one match.
// A nil field means the count is missing from the source.
type ServeStats struct {
	Aces         *float64
	DoubleFaults *float64
	ServePoints  *float64
	FirstIn      *float64
	FirstWon     *float64
	SecondWon    *float64
	BPSaved      *float64
	BPFaced      *float64
}

// Match is one completed match with its post-match statistics attached.
type Match struct {
	Date        time.Time
	TourneyID   string
	TourneyName string
	Level       string
	Surface     Surface
	Round       string
	BestOf      *float64
	MatchNum    int

	WinnerID, LoserID                 int
	WinnerRank, LoserRank             *float64
	WinnerRankPoints, LoserRankPoints *float64
	WinnerSeed, LoserSeed             *float64
	WinnerEntry, LoserEntry           string

	Minutes *float64

	WinnerServe, LoserServe ServeStats
}

// IsQualifying reports whether the match belongs to a qualifying round:
// Q1, Q2, Q3, Q4 or QR. QF is the quarterfinal and is not.
func (m Match) IsQualifying() bool {
	r := m.Round
	if len(r) < 2 || r[0] != 'Q' {
		return false
	}
	return r[1] == 'R' || (r[1] >= '0' && r[1] <= '9')
}

// Before reports whether m sorts strictly before o in processing order:
// date, then tournament id, then match number.
func (m Match) Before(o Match) bool {
	if !m.Date.Equal(o.Date) {
		return m.Date.Before(o.Date)
	}
	if m.TourneyID != o.TourneyID {
		return m.TourneyID < o.TourneyID
	}
	return m.MatchNum < o.MatchNum
}

// RankingSnapshot is one weekly ranking entry for a player.
type RankingSnapshot struct {
	Date     time.Time
	PlayerID int
	Rank     float64
	Points   float64
}

// EntryNone is emitted when a player has no entry type.
const EntryNone = "NONE"

// Row is one pre-match feature row. Every *_diff field is P1 minus P2; a nil
// pointer is a missing value.
type Row struct {
	Date         time.Time
	TourneyID    string
	TourneyLevel string
	Surface      Surface
	Round        string
	BestOf       *float64
	P1ID, P2ID   int
	P1Win        int

	EloDiff        float64
	SurfaceEloDiff float64

	RankDiff         float64
	RankPointsDiff   float64
	RankD4Diff       *float64
	RankPointsD4Diff *float64
	RankD8Diff       *float64
	RankPointsD8Diff *float64

	WR10Diff   float64
	WR20Diff   float64
	StreakDiff int

	RestDiff int
	M7Diff   int
	M14Diff  int
	M30Diff  int

	TourneyMatchesDiff int
	TourneyMinutesDiff int

	H2HDiff        int
	H2HSurfaceDiff int

	SeedDiff *float64
	EntryP1  string
	EntryP2  string

	AceRateDiff       float64
	DFRateDiff        float64
	FirstInRateDiff   float64
	FirstWonRateDiff  float64
	SecondWonRateDiff float64
	BPSavedRateDiff   float64
}

// Columns is the ordered output header of a Row.
var Columns = []string{
	"date", "tourney_id", "tourney_level", "surface", "round", "best_of",
	"p1_id", "p2_id", "y_p1_win",
	"elo_diff", "surface_elo_diff",
	"rank_diff", "rank_points_diff",
	"rank_d4_diff", "rank_points_d4_diff", "rank_d8_diff", "rank_points_d8_diff",
	"wr10_diff", "wr20_diff", "streak_diff",
	"rest_diff", "m7_diff", "m14_diff", "m30_diff",
	"tourney_matches_so_far_diff", "tourney_minutes_so_far_diff",
	"h2h_diff", "h2h_surface_diff",
	"seed_diff", "entry_p1", "entry_p2",
	"ace_rate_diff", "df_rate_diff", "first_in_rate_diff",
	"first_won_rate_diff", "second_won_rate_diff", "bp_saved_rate_diff",
}

// Values returns the row's cells in Columns order. Missing numerics are nil;
// dates are formatted YYYY-MM-DD.
func (r Row) Values() []any {
	return []any{
		r.Date.Format("2006-01-02"), r.TourneyID, r.TourneyLevel, string(r.Surface), r.Round, opt(r.BestOf),
		r.P1ID, r.P2ID, r.P1Win,
		r.EloDiff, r.SurfaceEloDiff,
		r.RankDiff, r.RankPointsDiff,
		opt(r.RankD4Diff), opt(r.RankPointsD4Diff), opt(r.RankD8Diff), opt(r.RankPointsD8Diff),
		r.WR10Diff, r.WR20Diff, r.StreakDiff,
		r.RestDiff, r.M7Diff, r.M14Diff, r.M30Diff,
		r.TourneyMatchesDiff, r.TourneyMinutesDiff,
		r.H2HDiff, r.H2HSurfaceDiff,
		opt(r.SeedDiff), r.EntryP1, r.EntryP2,
		r.AceRateDiff, r.DFRateDiff, r.FirstInRateDiff,
		r.FirstWonRateDiff, r.SecondWonRateDiff, r.BPSavedRateDiff,
	}
}

func opt(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// SortMatches stably orders matches by date, tournament id and match number.
func SortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Before(ms[j]) })
}
