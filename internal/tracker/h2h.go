package tracker

import "github.com/pable/go-tennis-features/internal/model"

type surfacePair struct {
	surface model.Surface
	pair    PairKey
}

// HeadToHead tracks a signed balance per unordered pair, globally and per
// surface. A positive stored balance favours the lower id.
type HeadToHead struct {
	global    map[PairKey]int
	bySurface map[surfacePair]int
}

// NewHeadToHead returns an empty HeadToHead tracker.
func NewHeadToHead() *HeadToHead {
	return &HeadToHead{
		global:    make(map[PairKey]int),
		bySurface: make(map[surfacePair]int),
	}
}

// Balance returns the global balance from p1's point of view.
func (h *HeadToHead) Balance(p1, p2 int) int {
	k := Pair(p1, p2)
	return k.Sign(p1) * h.global[k]
}

// SurfaceBalance returns the balance on surface s from p1's point of view.
func (h *HeadToHead) SurfaceBalance(s model.Surface, p1, p2 int) int {
	k := Pair(p1, p2)
	return k.Sign(p1) * h.bySurface[surfacePair{s, k}]
}

// Record moves both balances by one toward the winner.
func (h *HeadToHead) Record(s model.Surface, winner, loser int) {
	k := Pair(winner, loser)
	change := k.Sign(winner)
	h.global[k] += change
	h.bySurface[surfacePair{s, k}] += change
}
