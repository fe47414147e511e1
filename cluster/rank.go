package cluster

import (
	"math"
	"sort"

	"github.com/bioclust/tmclust/align"
	"github.com/bioclust/tmclust/chain"
)

// retention cap and length-knee parameters, §4.3.
const (
	minRepr = 10
	maxRepr = 50
	fastLB  = 50
	fastUB  = 1000
)

// Candidate is a single ranked (rep id, score) pair produced by Rank.
type Candidate struct {
	RepId int
	Score float64
}

// lbHwRMSD computes the lower-bound policy of §4.3: mode s<=1 keys off
// molecule type (nucleic acid vs protein), otherwise a flat 0.5*c. Per
// spec.md §9 Open Questions, this is recomputed per pair from the pair's
// combined molecule-type code (molX+molY), not once per query.
func lbHwRMSD(c float64, s int, molX, molY int) float64 {
	if s <= 1 {
		if molX+molY > 0 {
			return 0.02 * c
		}
		return 0.25 * c
	}
	return 0.5 * c
}

// ubHwRMSD is the §4.3 early-exit upper bound: a good hit is essentially
// guaranteed to survive the refined stage.
func ubHwRMSD(c float64) float64 {
	return 0.9*c + 0.1
}

// Rank implements the Candidate Ranker (§4.3): pre-filters reps via the
// Pruner, scores survivors with HwRMSD, applies the tentative-hint boost,
// sorts descending, and truncates to a length-dependent cap.
//
// reps is the representative list in insertion order, as the caller passes
// it; Rank walks it back to front (most recent first), matching "similar
// lengths cluster nearby" (§4.3 step 1). The +1.0 hint boost is added
// before the lb_HwRMSD check, so a hinted representative is kept even when
// its native score is below the bound.
func Rank(query *chain.Record, reps []int, table chain.Table, cutoff float64, s int, hints HintSet) []Candidate {
	x := query.Length()
	ub := ubHwRMSD(cutoff)

	hinted := hints.Lookup(query.Label)
	hintedSeen := 0
	hintSize := len(hinted)

	kept := make([]Candidate, 0, len(reps))

	for i := len(reps) - 1; i >= 0; i-- {
		repId := reps[i]
		rep := table.ById(repId)
		if rep == nil || rep.Released() {
			continue
		}
		y := rep.Length()

		isHinted := Hinted(hinted, rep.Label)

		// §9 Open Question: once the hint set is fully covered and at
		// least two hinted entries have been kept, skip further
		// unhinted candidates rather than stopping the loop outright.
		// Mirrored from the reference implementation's condition
		// literally (continue, not break) — see DESIGN.md decision #1.
		if hintSize > 0 && hintedSeen >= 2 && len(kept) >= hintSize && !isHinted {
			continue
		}

		if Prune(x, y, query.MolType, rep.MolType, cutoff, s) {
			continue
		}

		tm1, tm2, _, _, _ := align.HwRMSDMain(
			query.Coords, rep.Coords,
			query.SeqCodes, rep.SeqCodes,
			query.SecCodes, rep.SecCodes,
			nil, 0, 10,
		)
		tm := Combine(tm1, tm2, s)

		lb := lbHwRMSD(cutoff, s, query.MolType, rep.MolType)
		shortPair := math.Sqrt(float64(x)*float64(y)) <= fastLB

		score := tm
		if isHinted {
			score += 1.0
		}
		if score >= lb || shortPair {
			if isHinted {
				hintedSeen++
			}
			kept = append(kept, Candidate{RepId: repId, Score: score})
		}

		if tm >= ub {
			break
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	repCap := retentionCap(x)
	out := make([]Candidate, 0, repCap)
	for _, cand := range kept {
		if len(out) >= repCap {
			rep := table.ById(cand.RepId)
			shortPair := math.Sqrt(float64(x)*float64(rep.Length())) <= fastLB
			if !shortPair && cand.Score < 0.5*cutoff {
				break
			}
		}
		out = append(out, cand)
	}
	return out
}

// retentionCap computes the §4.3 step 8 per-query retention cap.
func retentionCap(x int) int {
	switch {
	case x <= fastLB:
		return maxRepr
	case x >= fastUB:
		return minRepr
	default:
		frac := float64(fastUB-x) / float64(fastUB-fastLB)
		return minRepr + int(math.Floor(frac*float64(maxRepr-minRepr)))
	}
}
