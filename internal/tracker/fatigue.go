package tracker

import "time"

// RestCap is the rest-days value reported for a player with no prior match.
const RestCap = 999

// Fatigue tracks when each player last played and the dates of their recent
// matches.
type Fatigue struct {
	last  map[int]time.Time
	dates map[int][]time.Time
}

// NewFatigue returns an empty Fatigue tracker.
func NewFatigue() *Fatigue {
	return &Fatigue{
		last:  make(map[int]time.Time),
		dates: make(map[int][]time.Time),
	}
}

// RestDays returns whole days between the player's last match and asOf,
// clamped to [0, limit]. A player with no prior match gets limit.
func (f *Fatigue) RestDays(pid int, asOf time.Time, limit int) int {
	prev, ok := f.last[pid]
	if !ok {
		return limit
	}
	d := daysBetween(prev, asOf)
	if d < 0 {
		d = 0
	}
	if d > limit {
		d = limit
	}
	return d
}

// MatchesInLastDays counts recorded matches at most window days before asOf,
// boundary included. It does not modify state; see Prune.
func (f *Fatigue) MatchesInLastDays(pid int, asOf time.Time, window int) int {
	n := 0
	for _, d := range f.dates[pid] {
		if daysBetween(d, asOf) <= window {
			n++
		}
	}
	return n
}

// Prune discards the player's stored dates that are more than window days
// before asOf. Callers prune with the widest window they query, after reading.
func (f *Fatigue) Prune(pid int, asOf time.Time, window int) {
	lst, ok := f.dates[pid]
	if !ok {
		return
	}
	keep := lst[:0]
	for _, d := range lst {
		if daysBetween(d, asOf) <= window {
			keep = append(keep, d)
		}
	}
	f.dates[pid] = keep
}

// Record stores date as the latest match for both players.
func (f *Fatigue) Record(winner, loser int, date time.Time) {
	for _, pid := range [2]int{winner, loser} {
		f.last[pid] = date
		f.dates[pid] = append(f.dates[pid], date)
	}
}

// daysBetween is the whole-day difference to - from, truncated like a
// calendar date difference.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
