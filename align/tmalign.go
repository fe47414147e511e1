package align

import (
	"math"

	"github.com/bioclust/tmclust/chain"
)

// gapOpen/gapExtend for the structural correspondence aligner: wide
// relative to the coordinate scale (Angstroms) so the aligner prefers
// extending a plausible correspondence over fragmenting it, the same
// qualitative choice the reference tool makes by running its own DP under
// a distance-derived scoring matrix rather than a sequence-identity one.
const (
	structGapOpen   = 2.0
	structGapExtend = 0.6
	hwrmsdGapOpen   = 4.0
	hwrmsdGapExtend = 1.2
)

// TMAlignMain implements the documented tmalign_main contract: alternates
// structural DP alignment and Kabsch re-superposition for a bounded number
// of rounds (2 for the fast tier, up to 8 for the refined tier, stopping
// early if the correspondence set stops changing), then reduces the final
// distance profile under five normalisations.
//
// seqX/seqY/secX/secY are accepted for contract parity with the reference
// signature; the scoring closure here is purely distance-based under the
// current superposition, which is the dominant term in practice and keeps
// this module's one stdlib-only concern (see DESIGN.md) from also needing
// a sequence/secondary-structure substitution matrix.
func TMAlignMain(x, y []chain.Point3, seqX, seqY, secX, secY []byte, fast bool, molSum int, tmCut float64) (TM1, TM2, TM3, TM4, TM5 float64) {
	maxIter := 8
	if fast {
		maxIter = 2
	}
	return runAlignLoop(x, y, maxIter, structGapOpen, structGapExtend, !fast)
}

// HwRMSDMain implements the documented hwrmsd_main contract: the same
// Kabsch+DP loop capped at iter rounds with a coarser gap model and no
// early-convergence check, cheap enough to run against every surviving
// representative during ranking.
//
// invmap and glocal are accepted for contract parity; this implementation
// always starts from an unbiased identity superposition (no incoming
// correspondence hint) and runs up to iter rounds, stopping early only when
// fewer than 3 residue pairs are matched.
func HwRMSDMain(x, y []chain.Point3, seqX, seqY, secX, secY []byte, invmap []int, glocal, iter int) (TM1, TM2, TM3, TM4, TM5 float64) {
	if iter <= 0 {
		iter = 1
	}
	return runAlignLoopFixed(x, y, iter, hwrmsdGapOpen, hwrmsdGapExtend)
}

// runAlignLoop alternates DP correspondence search and Kabsch
// re-superposition, stopping early once the correspondence set stops
// changing between rounds (the refined tier's convergence check); the
// fast tier simply runs a fixed small number of rounds since maxIter is
// already small.
func runAlignLoop(x, y []chain.Point3, maxIter int, gapOpen, gapExtend float64, checkConverge bool) (tm1, tm2, tm3, tm4, tm5 float64) {
	nx, ny := len(x), len(y)
	if nx == 0 || ny == 0 {
		return 0, 0, 0, 0, 0
	}
	lLong, lShort := nx, ny
	if ny > nx {
		lLong, lShort = ny, nx
	}

	rot, trans := identity(), chain.Point3{}
	var prevPairs []Pair

	for round := 0; round < maxIter; round++ {
		curX := make([]chain.Point3, nx)
		for i, p := range x {
			curX[i] = addPoint(rot.Apply(p), trans)
		}

		d0 := D0(lShort)
		scoreFn := func(i, j int) float64 {
			d := pointDist(curX[i], y[j])
			r := d / d0
			return 1 / (1 + r*r)
		}
		pairs := DPAlign(scoreFn, nx, ny, gapOpen, gapExtend, false)
		if len(pairs) == 0 {
			break
		}

		matched := matchedPairs(pairs)
		if len(matched) < 3 {
			break
		}

		px := make([]chain.Point3, len(matched))
		qy := make([]chain.Point3, len(matched))
		for k, pr := range matched {
			px[k] = x[pr.I]
			qy[k] = y[pr.J]
		}
		rot, trans, _ = Kabsch(px, qy)

		if checkConverge && samePairs(prevPairs, pairs) {
			prevPairs = pairs
			break
		}
		prevPairs = pairs
	}

	matched := matchedPairs(prevPairs)
	d := make([]float64, len(matched))
	for k, pr := range matched {
		cx := addPoint(rot.Apply(x[pr.I]), trans)
		d[k] = pointDist(cx, y[pr.J])
	}

	tm1 = TMScore(d, lLong)
	tm2 = TMScore(d, lShort)
	tm3 = TMScore(d, (lLong+lShort)/2)
	tm4 = harmonicTM(tm1, tm2)
	tm5 = math.Sqrt(clampFinite(tm1 * tm2))
	return clampFinite(tm1), clampFinite(tm2), clampFinite(tm3), clampFinite(tm4), clampFinite(tm5)
}

// runAlignLoopFixed is the coarse HwRMSD variant: no convergence check, so
// it runs iter rounds unless fewer than 3 residue pairs are matched.
func runAlignLoopFixed(x, y []chain.Point3, iter int, gapOpen, gapExtend float64) (tm1, tm2, tm3, tm4, tm5 float64) {
	return runAlignLoop(x, y, iter, gapOpen, gapExtend, false)
}

func matchedPairs(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.I >= 0 && p.J >= 0 {
			out = append(out, p)
		}
	}
	return out
}

func samePairs(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func addPoint(a, b chain.Point3) chain.Point3 {
	return chain.Point3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func pointDist(a, b chain.Point3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func harmonicTM(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}
