// Package cluster implements the incremental, length-sorted, greedy
// structural clustering engine: scoring, pruning, ranking, parallel
// confirmation, and the driver that ties them together.
package cluster

import "math"

// Combine reduces (TM1, TM2) to a single scalar under scoring mode s, per
// §4.2. TM1 is normalised by the longer chain, TM2 by the shorter.
func Combine(tm1, tm2 float64, s int) float64 {
	switch s {
	case 1:
		return tm2
	case 2:
		return tm1
	case 3:
		return (tm1 + tm2) / 2
	case 4:
		if tm1 == 0 && tm2 == 0 {
			return 0
		}
		return 2 / (1/tm1 + 1/tm2)
	case 5:
		return math.Sqrt(tm1 * tm2)
	case 6:
		return math.Sqrt((tm1*tm1 + tm2*tm2) / 2)
	default:
		return tm1
	}
}

// AOpt maps a scoring mode to the alignment primitive's internal
// normalisation flag a, per §4.6. s=5 appears in both the a=-2 and a=-1
// groups in the reference implementation; the later assignment wins, so
// this reports a=-1 for s=5 (see DESIGN.md Open Question decision #2 — a
// regression test in score_test.go pins this literally).
func AOpt(s int) int {
	a := 0
	switch s {
	case 2, 4, 5:
		a = -2
	}
	switch s {
	case 1, 5:
		a = -1
	}
	switch s {
	case 3:
		a = 1
	}
	return a
}

// Prune is the Length-Bound Pruner (§4.1): given query length x, candidate
// length y (y >= x by construction of the length-sorted order), molecule
// types molX/molY, cutoff c and mode s, reports whether the pair can be
// rejected without running any aligner.
func Prune(x, y int, molX, molY int, cutoff float64, s int) bool {
	if molX*molY < 0 {
		return true
	}
	xf, yf, c := float64(x), float64(y), cutoff
	switch s {
	case 1:
		return false
	case 2:
		return xf < c*yf
	case 3:
		return xf < (2*c-1)*yf
	case 4:
		return xf*(2/c-1) < yf
	case 5:
		return xf < c*c*yf
	case 6:
		return xf*xf < (2*c*c-1)*yf*yf
	default:
		return xf < c*yf
	}
}
