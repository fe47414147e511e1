package align

import "math"

// Pair is a single (i,j) correspondence produced by DPAlign; either index
// is -1 for a gap.
type Pair struct {
	I, J int
}

const negInf = -1e18

// direction codes, matching andrew-torda-seq_compat/gotoh.go's
// diag/pway/qway/stop scheme.
const (
	dirDiag byte = iota
	dirP         // vertical, consumes x only
	dirQ         // horizontal, consumes y only
	dirStop
)

// DPAlign runs Gotoh affine-gap dynamic programming over an nx-by-ny score
// matrix supplied as a closure (rather than a precomputed float matrix, so
// callers can re-score cheaply against a moving superposition without
// re-allocating), returning the best-scoring correspondence as a list of
// (i,j) pairs.
//
// Grounded on andrew-torda-seq_compat/gotoh.go's Align/traceback pair: same
// direction-code matrix and same forward-fill-then-traceback structure,
// generalised from a fixed identity/mismatch score matrix to an arbitrary
// scoreFn(i,j), which is what lets TMAlignMain and HwRMSDMain share one
// aligner while scoring under a changing rigid-body superposition.
func DPAlign(scoreFn func(i, j int) float64, nx, ny int, gapOpen, gapExtend float64, local bool) []Pair {
	if nx == 0 || ny == 0 {
		return nil
	}

	scr := make([][]float64, nx)
	dir := make([][]byte, nx)
	for i := range scr {
		scr[i] = make([]float64, ny)
		dir[i] = make([]byte, ny)
	}

	w1 := -(gapOpen + gapExtend)
	wdn := -gapExtend

	scr[0][0] = scoreFn(0, 0)
	dir[0][0] = dirStop
	if local && scr[0][0] < 0 {
		scr[0][0] = 0
	}

	qprev := negInf
	for j := 1; j < ny; j++ {
		base := scr[0][j-1] + w1
		ext := qprev + wdn
		q := math.Max(base, ext)
		val := scoreFn(0, j)
		if local {
			val = math.Max(val, 0)
		}
		if q > val {
			scr[0][j] = q
			dir[0][j] = dirQ
		} else {
			scr[0][j] = val
			dir[0][j] = dirStop
		}
		qprev = q
	}

	pprev := negInf
	for i := 1; i < nx; i++ {
		base := scr[i-1][0] + w1
		ext := pprev + wdn
		p := math.Max(base, ext)
		val := scoreFn(i, 0)
		if local {
			val = math.Max(val, 0)
		}
		if p > val {
			scr[i][0] = p
			dir[i][0] = dirP
		} else {
			scr[i][0] = val
			dir[i][0] = dirStop
		}
		pprev = p
	}

	pcol := make([]float64, ny)
	for j := range pcol {
		pcol[j] = negInf
	}

	for i := 1; i < nx; i++ {
		qrow := negInf
		for j := 1; j < ny; j++ {
			best := scr[i-1][j-1] + scoreFn(i, j)
			drctn := dirDiag

			pcol[j] = math.Max(scr[i-1][j]+w1, pcol[j]+wdn)
			qrow = math.Max(scr[i][j-1]+w1, qrow+wdn)

			if pcol[j] > best {
				best, drctn = pcol[j], dirP
			}
			if qrow > best {
				best, drctn = qrow, dirQ
			}
			if local && best < 0 {
				best, drctn = 0, dirStop
			}
			scr[i][j] = best
			dir[i][j] = drctn
		}
	}

	return tracebackGotoh(dir, scr, nx, ny, local)
}

func tracebackGotoh(dir [][]byte, scr [][]float64, nx, ny int, local bool) []Pair {
	maxI, maxJ := nx-1, ny-1
	maxScore := scr[maxI][maxJ]

	if local {
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				if scr[i][j] > maxScore {
					maxScore = scr[i][j]
					maxI, maxJ = i, j
				}
			}
		}
	} else {
		for i := 0; i < nx; i++ {
			if scr[i][ny-1] > maxScore {
				maxScore = scr[i][ny-1]
				maxI, maxJ = i, ny-1
			}
		}
		for j := 0; j < ny; j++ {
			if scr[nx-1][j] > maxScore {
				maxScore = scr[nx-1][j]
				maxI, maxJ = nx-1, j
			}
		}
	}

	var pairs []Pair
	i, j := maxI, maxJ

	if !local {
		if maxI == nx-1 {
			for jj := ny - 1; jj > maxJ; jj-- {
				pairs = append(pairs, Pair{I: -1, J: jj})
			}
		} else if maxJ == ny-1 {
			for ii := nx - 1; ii > maxI; ii-- {
				pairs = append(pairs, Pair{I: ii, J: -1})
			}
		}
	}

	for i >= 0 && j >= 0 && dir[i][j] != dirStop {
		switch dir[i][j] {
		case dirDiag:
			pairs = append(pairs, Pair{I: i, J: j})
			i--
			j--
		case dirP:
			pairs = append(pairs, Pair{I: i, J: -1})
			i--
		case dirQ:
			pairs = append(pairs, Pair{I: -1, J: j})
			j--
		}
	}
	if i >= 0 && j >= 0 {
		pairs = append(pairs, Pair{I: i, J: j})
	}

	if !local {
		for i--; i >= 0; i-- {
			pairs = append(pairs, Pair{I: i, J: -1})
		}
		for j--; j >= 0; j-- {
			pairs = append(pairs, Pair{I: -1, J: j})
		}
	}

	for a, b := 0, len(pairs)-1; a < b; a, b = a+1, b-1 {
		pairs[a], pairs[b] = pairs[b], pairs[a]
	}
	return pairs
}
