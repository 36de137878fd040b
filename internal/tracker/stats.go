package tracker

import (
	"math"

	"github.com/pable/go-tennis-features/internal/model"
)

// Metric names a per-match serve rate.
type Metric string

const (
	AceRate       Metric = "ace_rate"
	DFRate        Metric = "df_rate"
	FirstInRate   Metric = "first_in_rate"
	FirstWonRate  Metric = "first_won_rate"
	SecondWonRate Metric = "second_won_rate"
	BPSavedRate   Metric = "bp_saved_rate"
)

// Metrics lists every tracked metric in output order.
var Metrics = []Metric{AceRate, DFRate, FirstInRate, FirstWonRate, SecondWonRate, BPSavedRate}

// DefaultRollN is the default number of defined values averaged per metric.
const DefaultRollN = 20

// Rates derives the six serve rates of one player's box score. An undefined
// rate (missing numerator, missing or non-positive denominator) is NaN.
func Rates(s model.ServeStats) map[Metric]float64 {
	var secondTotal *float64
	if s.ServePoints != nil && s.FirstIn != nil {
		secondTotal = model.Float(*s.ServePoints - *s.FirstIn)
	}
	return map[Metric]float64{
		AceRate:       rate(s.Aces, s.ServePoints),
		DFRate:        rate(s.DoubleFaults, s.ServePoints),
		FirstInRate:   rate(s.FirstIn, s.ServePoints),
		FirstWonRate:  rate(s.FirstWon, s.FirstIn),
		SecondWonRate: rate(s.SecondWon, secondTotal),
		BPSavedRate:   rate(s.BPSaved, s.BPFaced),
	}
}

func rate(num, den *float64) float64 {
	if den == nil || math.IsNaN(*den) || *den <= 0 {
		return math.NaN()
	}
	if num == nil || math.IsNaN(*num) {
		return math.NaN()
	}
	return *num / *den
}

// ServeStats keeps every per-match rate each player has produced.
type ServeStats struct {
	history map[int]map[Metric][]float64
}

// NewServeStats returns an empty ServeStats tracker.
func NewServeStats() *ServeStats {
	return &ServeStats{history: make(map[int]map[Metric][]float64)}
}

// Average is the mean of the player's last n defined values of metric.
// Undefined values are skipped and do not count toward n. It returns def
// when no defined value exists.
func (t *ServeStats) Average(pid int, metric Metric, n int, def float64) float64 {
	h := t.history[pid][metric]
	sum, cnt := 0.0, 0
	for i := len(h) - 1; i >= 0 && cnt < n; i-- {
		if math.IsNaN(h[i]) {
			continue
		}
		sum += h[i]
		cnt++
	}
	if cnt == 0 {
		return def
	}
	return sum / float64(cnt)
}

// Record appends both players' rates for match m.
func (t *ServeStats) Record(m model.Match) {
	t.append(m.WinnerID, Rates(m.WinnerServe))
	t.append(m.LoserID, Rates(m.LoserServe))
}

func (t *ServeStats) append(pid int, rates map[Metric]float64) {
	h, ok := t.history[pid]
	if !ok {
		h = make(map[Metric][]float64, len(Metrics))
		t.history[pid] = h
	}
	for k, v := range rates {
		h[k] = append(h[k], v)
	}
}
