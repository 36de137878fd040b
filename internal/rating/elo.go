// Package rating implements the online Elo engine used for pre-match skill
// features. Ratings only change through Record and Decay, so a read taken
// before a match's Record call never reflects that match.
package rating

import (
	"math"

	"github.com/pable/go-tennis-features/internal/model"
)

const (
	// Base is the rating of a player never seen before.
	Base = 1500.0

	KMin      = 16.0
	KMax      = 48.0
	KExpScale = 40.0

	// DecayStartDays is the inactivity gap from which Decay pulls ratings
	// toward Base.
	DecayStartDays = 180
	HalfLifeDays   = 180.0
)

// LevelMultiplier scales K by tournament importance. Unlisted levels use 1.0.
var LevelMultiplier = map[string]float64{
	"G": 1.35, // Grand Slam
	"M": 1.15, // Masters 1000
	"F": 1.10, // Tour Finals
	"A": 1.00, // regular tour
	"B": 0.90,
}

// Engine holds global and per-surface ratings plus lifetime match counts.
type Engine struct {
	global  map[int]float64
	surface map[model.Surface]map[int]float64
	played  map[int]int
}

// NewEngine returns an Engine with no players.
func NewEngine() *Engine {
	e := &Engine{
		global:  make(map[int]float64),
		surface: make(map[model.Surface]map[int]float64, len(model.Surfaces)),
		played:  make(map[int]int),
	}
	for _, s := range model.Surfaces {
		e.surface[s] = make(map[int]float64)
	}
	return e
}

// WinProbability is the logistic expectation that a player rated a beats one rated b.
func WinProbability(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

// Global returns the player's global rating.
func (e *Engine) Global(pid int) float64 {
	return getOr(e.global, pid, Base)
}

// Rating returns the player's rating on surface, or the global rating when
// the surface is not one of the rated ones.
func (e *Engine) Rating(pid int, s model.Surface) float64 {
	if m, ok := e.surface[s]; ok {
		return getOr(m, pid, Base)
	}
	return e.Global(pid)
}

// MatchesPlayed returns the lifetime number of recorded matches for pid.
func (e *Engine) MatchesPlayed(pid int) int {
	return e.played[pid]
}

// KFactor returns the update magnitude for a match won by pid at level.
// Experience shrinks K from KMax toward KMin.
func (e *Engine) KFactor(pid int, level string) float64 {
	k := KMin + (KMax-KMin)*math.Exp(-float64(e.played[pid])/KExpScale)
	if mult, ok := LevelMultiplier[level]; ok {
		k *= mult
	}
	return k
}

// Decay pulls every rating of pid toward Base with a HalfLifeDays half-life
// once restDays reaches DecayStartDays. Shorter gaps are a no-op.
func (e *Engine) Decay(pid int, restDays int) {
	if restDays < DecayStartDays {
		return
	}
	f := math.Pow(0.5, float64(restDays)/HalfLifeDays)
	decay := func(cur float64) float64 { return Base + (cur-Base)*f }

	e.global[pid] = decay(e.Global(pid))
	for s, m := range e.surface {
		m[pid] = decay(e.Rating(pid, s))
	}
}

// Record applies the result of one match. The surface pair is updated
// independently of the global pair, with its own expectation, and only for
// rated surfaces. Both players' match counts are incremented.
func (e *Engine) Record(winner, loser int, level string, s model.Surface) {
	k := e.KFactor(winner, level)

	rw, rl := e.Global(winner), e.Global(loser)
	delta := k * (1 - WinProbability(rw, rl))
	e.global[winner] = rw + delta
	e.global[loser] = rl - delta

	if m, ok := e.surface[s]; ok {
		sw, sl := getOr(m, winner, Base), getOr(m, loser, Base)
		sd := k * (1 - WinProbability(sw, sl))
		m[winner] = sw + sd
		m[loser] = sl - sd
	}

	e.played[winner]++
	e.played[loser]++
}

func getOr[K comparable, V any](m map[K]V, k K, def V) V {
	if v, ok := m[k]; ok {
		return v
	}
	return def
}
