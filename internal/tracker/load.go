package tracker

import "math"

type tourneyPlayer struct {
	tourney string
	player  int
}

// TournamentLoad accumulates matches and minutes played per player within a
// tournament.
type TournamentLoad struct {
	matches map[tourneyPlayer]int
	minutes map[tourneyPlayer]int
}

// NewTournamentLoad returns an empty TournamentLoad tracker.
func NewTournamentLoad() *TournamentLoad {
	return &TournamentLoad{
		matches: make(map[tourneyPlayer]int),
		minutes: make(map[tourneyPlayer]int),
	}
}

// Matches returns how many matches pid has played so far in tourney.
func (t *TournamentLoad) Matches(tourney string, pid int) int {
	return t.matches[tourneyPlayer{tourney, pid}]
}

// Minutes returns how many minutes pid has played so far in tourney.
func (t *TournamentLoad) Minutes(tourney string, pid int) int {
	return t.minutes[tourneyPlayer{tourney, pid}]
}

// Record counts the match for both players. Minutes are added only when
// minutes is present and finite; fractional values truncate.
func (t *TournamentLoad) Record(tourney string, winner, loser int, minutes *float64) {
	w, l := tourneyPlayer{tourney, winner}, tourneyPlayer{tourney, loser}
	t.matches[w]++
	t.matches[l]++

	if minutes == nil || math.IsNaN(*minutes) || math.IsInf(*minutes, 0) {
		return
	}
	m := int(*minutes)
	t.minutes[w] += m
	t.minutes[l] += m
}
