package cluster

import (
	"context"

	"github.com/bioclust/tmclust/chain"
)

// degenerateLength is the §3 invariant threshold: chains at or below this
// length always form singleton clusters, since the alignment primitive
// cannot handle them.
const degenerateLength = 5

// Result is the stable, serialisable output of a full clustering run
// (§4.5, §11): the representative list, the per-chain membership vector,
// and per-cluster member counts.
type Result struct {
	Representatives []int
	Membership      map[int]int
	ClusterSize     []int
}

// ProgressFunc is called once per processed chain (§4.5 "Progress
// reporting"); label/length/percentage/candidate-vs-representative counts
// are collaborator-facing only, not part of the correctness contract.
type ProgressFunc func(label string, length int, fracDone float64, numCandidates, numReps int)

// Run implements the Clustering Driver (§4.5): processes chains in
// descending length order, pruning/ranking/confirming each against the
// current representative list, growing it on MISS and recording
// membership on HIT.
func Run(ctx context.Context, table chain.Table, params Params, hints HintSet, progress ProgressFunc) (*Result, error) {
	order := chain.LengthSortedOrder(table)

	result := &Result{
		Membership: make(map[int]int, len(order)),
	}
	reverse := ReverseIndex{}

	report := func(label string, length int, i, n, numCandidates, numReps int) {
		if progress == nil {
			return
		}
		frac := 0.0
		if n > 0 {
			frac = float64(i+1) / float64(n)
		}
		progress(label, length, frac, numCandidates, numReps)
	}

	for i, id := range order {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		q := table.ById(id)
		if q == nil {
			continue
		}

		if q.Length() <= degenerateLength {
			clusterIdx := len(result.Representatives)
			result.Representatives = append(result.Representatives, id)
			result.Membership[id] = clusterIdx
			reverse[id] = clusterIdx
			result.ClusterSize = append(result.ClusterSize, 1)
			report(q.Label, q.Length(), i, len(order), 0, len(result.Representatives))
			continue
		}

		// Rank applies the Length-Bound Pruner itself while walking the
		// representative list most-recent-first (§4.3 steps 1-2), so a
		// separate pre-pruning pass here would just repeat that same
		// six-way switch a second time (the reference implementation's
		// own redundancy between its outer filter and HwRMSD loop,
		// deliberately not carried over — see DESIGN.md).
		ranked := rankedCandidates(q, result.Representatives, table, params, hints)

		hit, clusterIdx := Confirm(ctx, q, ranked, table, reverse, params)
		if hit {
			result.Membership[id] = clusterIdx
			result.ClusterSize[clusterIdx]++
			q.Release()
		} else {
			clusterIdx = len(result.Representatives)
			result.Representatives = append(result.Representatives, id)
			result.Membership[id] = clusterIdx
			reverse[id] = clusterIdx
			result.ClusterSize = append(result.ClusterSize, 1)
		}

		report(q.Label, q.Length(), i, len(order), len(ranked), len(result.Representatives))
	}

	return result, nil
}

// rankedCandidates runs the Candidate Ranker over the full representative
// list (the Pruner is applied inside Rank, so passing the full list
// preserves §4.3 step 1's "most-recent first" iteration order exactly).
func rankedCandidates(q *chain.Record, reps []int, table chain.Table, params Params, hints HintSet) []int {
	ranked := Rank(q, reps, table, params.Cutoff, params.Mode, hints)
	out := make([]int, len(ranked))
	for i, c := range ranked {
		out[i] = c.RepId
	}
	return out
}
