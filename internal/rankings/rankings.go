// Package rankings indexes the weekly ranking feed per player for
// point-in-time lookups. The index is built once and never mutated by match
// outcomes.
package rankings

import (
	"sort"
	"time"

	"github.com/pable/go-tennis-features/internal/model"
)

// Snapshot is one ranking entry of a player.
type Snapshot struct {
	Date   time.Time
	Rank   float64
	Points float64
}

// Index maps player ids to their date-ordered ranking history.
type Index struct {
	hist map[int][]Snapshot
}

// Build groups snaps per player and sorts each history by date. Snapshots
// with a zero date are dropped.
func Build(snaps []model.RankingSnapshot) *Index {
	idx := &Index{hist: make(map[int][]Snapshot)}
	for _, s := range snaps {
		if s.Date.IsZero() {
			continue
		}
		idx.hist[s.PlayerID] = append(idx.hist[s.PlayerID], Snapshot{Date: s.Date, Rank: s.Rank, Points: s.Points})
	}
	for pid := range idx.hist {
		h := idx.hist[pid]
		sort.SliceStable(h, func(i, j int) bool { return h[i].Date.Before(h[j].Date) })
	}
	return idx
}

// Empty returns an index with no history, used when ranking features are off.
func Empty() *Index {
	return &Index{hist: map[int][]Snapshot{}}
}

// Players returns the number of players with at least one snapshot.
func (x *Index) Players() int {
	return len(x.hist)
}

// PointInTime returns the most recent snapshot dated strictly before date.
func (x *Index) PointInTime(pid int, date time.Time) (Snapshot, bool) {
	h := x.hist[pid]
	// first index whose date is not before date
	i := sort.Search(len(h), func(i int) bool { return !h[i].Date.Before(date) })
	if i == 0 {
		return Snapshot{}, false
	}
	return h[i-1], true
}

// Delta returns the rank and points change between the point-in-time values
// at date and at date minus the given number of weeks. ok is false when
// either snapshot is unavailable.
func (x *Index) Delta(pid int, date time.Time, weeks int) (rank, points float64, ok bool) {
	cur, ok := x.PointInTime(pid, date)
	if !ok {
		return 0, 0, false
	}
	past, ok := x.PointInTime(pid, date.AddDate(0, 0, -7*weeks))
	if !ok {
		return 0, 0, false
	}
	return cur.Rank - past.Rank, cur.Points - past.Points, true
}
