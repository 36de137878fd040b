// Package loader reads the Sackmann tennis_atp CSV files into match records
// and ranking snapshots.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pable/go-tennis-features/internal/model"
)

// ErrNoMatches is returned when no match record could be loaded.
var ErrNoMatches = errors.New("no match records loaded")

// RankingFiles are the Sackmann weekly ranking files, by decade.
var RankingFiles = []string{
	"atp_rankings_00s.csv",
	"atp_rankings_10s.csv",
	"atp_rankings_20s.csv",
	"atp_rankings_current.csv",
}

// MatchFile is the file name of one season of tour-level matches.
func MatchFile(year int) string {
	return fmt.Sprintf("atp_matches_%d.csv", year)
}

// Loader reads CSV files from a data directory.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// New returns a Loader over dir. A nil logger discards output.
func New(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger}
}

// Matches loads every season in [yearFrom, yearTo] and returns the records
// sorted by date, tournament id and match number. Missing season files are
// skipped. Rows without a parseable date or player ids are dropped.
func (l *Loader) Matches(yearFrom, yearTo int) ([]model.Match, error) {
	var all []model.Match
	files := 0
	for y := yearFrom; y <= yearTo; y++ {
		path := filepath.Join(l.dir, MatchFile(y))
		ms, dropped, err := readFile(path, ReadMatches)
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("season file missing", zap.String("path", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		files++
		if dropped > 0 {
			l.logger.Warn("dropped match rows", zap.String("path", path), zap.Int("dropped", dropped))
		}
		l.logger.Debug("loaded season", zap.Int("year", y), zap.Int("matches", len(ms)))
		all = append(all, ms...)
	}
	if files == 0 || len(all) == 0 {
		return nil, fmt.Errorf("%w: years %d-%d in %s", ErrNoMatches, yearFrom, yearTo, l.dir)
	}
	model.SortMatches(all)
	return all, nil
}

// Rankings loads the weekly ranking files, keeping snapshots dated from
// yearFrom-1 through yearTo so lagged lookups at the start of the range work.
func (l *Loader) Rankings(yearFrom, yearTo int) ([]model.RankingSnapshot, error) {
	var out []model.RankingSnapshot
	for _, name := range RankingFiles {
		path := filepath.Join(l.dir, name)
		snaps, dropped, err := readFile(path, ReadRankings)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			l.logger.Warn("dropped ranking rows", zap.String("path", path), zap.Int("dropped", dropped))
		}
		for _, s := range snaps {
			if y := s.Date.Year(); y >= yearFrom-1 && y <= yearTo {
				out = append(out, s)
			}
		}
	}
	l.logger.Debug("loaded rankings", zap.Int("snapshots", len(out)))
	return out, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, int, error)) ([]T, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	out, dropped, err := read(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return out, dropped, nil
}

// Split separates qualifying-round matches from main-draw matches,
// preserving order.
func Split(ms []model.Match) (main, qualifying []model.Match) {
	for _, m := range ms {
		if m.IsQualifying() {
			qualifying = append(qualifying, m)
		} else {
			main = append(main, m)
		}
	}
	return main, qualifying
}

// ParseDate parses a YYYYMMDD date. A trailing ".0", as written by
// spreadsheet exports, is tolerated.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	return time.Parse("20060102", s)
}

// header maps column names to indexes.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		h[strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))] = i
	}
	return h
}

func (h header) str(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// num returns the column as a float, or nil when empty or not numeric.
func (h header) num(rec []string, col string) *float64 {
	s := h.str(rec, col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (h header) id(rec []string, col string) (int, bool) {
	v := h.num(rec, col)
	if v == nil || *v != math.Trunc(*v) {
		return 0, false
	}
	return int(*v), true
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// ReadMatches parses a Sackmann match file. It returns the parsed records
// in file order and the number of rows dropped.
func ReadMatches(r io.Reader) ([]model.Match, int, error) {
	cr := newReader(r)
	cols, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(cols)

	var out []model.Match
	dropped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		m, ok := parseMatch(h, rec)
		if !ok {
			dropped++
			continue
		}
		out = append(out, m)
	}
	return out, dropped, nil
}

func parseMatch(h header, rec []string) (model.Match, bool) {
	date, err := ParseDate(h.str(rec, "tourney_date"))
	if err != nil {
		return model.Match{}, false
	}
	w, ok := h.id(rec, "winner_id")
	if !ok {
		return model.Match{}, false
	}
	l, ok := h.id(rec, "loser_id")
	if !ok {
		return model.Match{}, false
	}

	level := h.str(rec, "tourney_level")
	if level == "" {
		level = "UNK"
	}
	round := h.str(rec, "round")
	if round == "" {
		round = "UNK"
	}
	num := 0
	if v := h.num(rec, "match_num"); v != nil {
		num = int(*v)
	}

	return model.Match{
		Date:        date,
		TourneyID:   h.str(rec, "tourney_id"),
		TourneyName: h.str(rec, "tourney_name"),
		Level:       level,
		Surface:     model.ParseSurface(h.str(rec, "surface")),
		Round:       round,
		BestOf:      h.num(rec, "best_of"),
		MatchNum:    num,

		WinnerID:         w,
		LoserID:          l,
		WinnerRank:       h.num(rec, "winner_rank"),
		LoserRank:        h.num(rec, "loser_rank"),
		WinnerRankPoints: h.num(rec, "winner_rank_points"),
		LoserRankPoints:  h.num(rec, "loser_rank_points"),
		WinnerSeed:       h.num(rec, "winner_seed"),
		LoserSeed:        h.num(rec, "loser_seed"),
		WinnerEntry:      h.str(rec, "winner_entry"),
		LoserEntry:       h.str(rec, "loser_entry"),

		Minutes: h.num(rec, "minutes"),

		WinnerServe: serveStats(h, rec, "w_"),
		LoserServe:  serveStats(h, rec, "l_"),
	}, true
}

func serveStats(h header, rec []string, prefix string) model.ServeStats {
	return model.ServeStats{
		Aces:         h.num(rec, prefix+"ace"),
		DoubleFaults: h.num(rec, prefix+"df"),
		ServePoints:  h.num(rec, prefix+"svpt"),
		FirstIn:      h.num(rec, prefix+"1stIn"),
		FirstWon:     h.num(rec, prefix+"1stWon"),
		SecondWon:    h.num(rec, prefix+"2ndWon"),
		BPSaved:      h.num(rec, prefix+"bpSaved"),
		BPFaced:      h.num(rec, prefix+"bpFaced"),
	}
}

var rankingColumns = []string{"ranking_date", "rank", "player", "points"}

// ReadRankings parses a Sackmann ranking file. Files without a header row
// are read in ranking_date, rank, player, points order. Rows with an
// unparseable date, rank or player are dropped; missing points read as 0.
func ReadRankings(r io.Reader) ([]model.RankingSnapshot, int, error) {
	cr := newReader(r)
	first, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	h := newHeader(rankingColumns)
	var out []model.RankingSnapshot
	dropped := 0
	add := func(rec []string) {
		s, ok := parseRanking(h, rec)
		if !ok {
			dropped++
			return
		}
		out = append(out, s)
	}

	if _, err := ParseDate(first[0]); err == nil {
		add(first)
	} else {
		h = newHeader(first)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		add(rec)
	}
	return out, dropped, nil
}

func parseRanking(h header, rec []string) (model.RankingSnapshot, bool) {
	date, err := ParseDate(h.str(rec, "ranking_date"))
	if err != nil {
		return model.RankingSnapshot{}, false
	}
	pid, ok := h.id(rec, "player")
	if !ok {
		return model.RankingSnapshot{}, false
	}
	rank := h.num(rec, "rank")
	if rank == nil {
		return model.RankingSnapshot{}, false
	}
	s := model.RankingSnapshot{Date: date, PlayerID: pid, Rank: *rank}
	if p := h.num(rec, "points"); p != nil {
		s.Points = *p
	}
	return s, true
}
