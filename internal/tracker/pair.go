// Package tracker holds the per-player and per-pair running state that the
// dataset builder reads before a match and updates after it. Each tracker
// owns only its own maps and never looks at another tracker.
package tracker

// PairKey is the canonical key of an unordered player pair.
type PairKey struct {
	Low, High int
}

// Pair returns the canonical key for players a and b.
func Pair(a, b int) PairKey {
	if a < b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

// Sign is +1 when first is the lower id of the pair, -1 otherwise.
func (k PairKey) Sign(first int) int {
	if first == k.Low {
		return 1
	}
	return -1
}
