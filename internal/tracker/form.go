package tracker

// Form tracks each player's win/loss history and current streak.
type Form struct {
	history map[int][]int
	streak  map[int]int
}

// NewForm returns an empty Form tracker.
func NewForm() *Form {
	return &Form{
		history: make(map[int][]int),
		streak:  make(map[int]int),
	}
}

// WinRate is the mean of the player's last n outcomes (all of them when
// fewer than n exist), or def when the player has no history.
func (f *Form) WinRate(pid, n int, def float64) float64 {
	h := f.history[pid]
	if len(h) == 0 || n <= 0 {
		return def
	}
	if len(h) > n {
		h = h[len(h)-n:]
	}
	wins := 0
	for _, v := range h {
		wins += v
	}
	return float64(wins) / float64(len(h))
}

// Streak is positive for consecutive wins, negative for consecutive losses.
func (f *Form) Streak(pid int) int {
	return f.streak[pid]
}

// Record appends the outcome for both players and advances their streaks.
func (f *Form) Record(winner, loser int) {
	f.history[winner] = append(f.history[winner], 1)
	f.history[loser] = append(f.history[loser], 0)

	if sw := f.streak[winner]; sw >= 0 {
		f.streak[winner] = sw + 1
	} else {
		f.streak[winner] = 1
	}
	if sl := f.streak[loser]; sl <= 0 {
		f.streak[loser] = sl - 1
	} else {
		f.streak[loser] = -1
	}
}
