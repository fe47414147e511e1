package cluster

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/bmkessler/fastdiv"

	"github.com/bioclust/tmclust/align"
	"github.com/bioclust/tmclust/chain"
)

// ReverseIndex maps a chain id currently in the representative list to
// its cluster index (§3 Representative reverse index).
type ReverseIndex map[int]int

// Params bundles the scalar parameters the Parallel Confirmer and
// Candidate Ranker both need.
type Params struct {
	Cutoff  float64
	Mode    int
	Fast    bool
	Workers int
}

// Confirm implements the Parallel Confirmer (§4.4, §5): partitions
// candidates round-robin across Workers goroutines, each running the
// two-tier TM-align protocol, racing to report the first HIT via a shared
// atomic flag and a mutex-guarded seal.
//
// Grounded directly on original_source/qTMclust+.cpp's alignment_worker /
// ThreadArgs: an atomic found flag, a mutex-protected (sealed,
// assigned_cluster_idx) pair, and candidate k assigned to worker k mod W.
func Confirm(ctx context.Context, query *chain.Record, candidates []int, table chain.Table, reps ReverseIndex, params Params) (hit bool, clusterIdx int) {
	w := params.Workers
	if w < 1 {
		w = 1
	}
	if len(candidates) == 0 {
		return false, -1
	}

	var found atomic.Bool
	var mu sync.Mutex
	sealed := false
	hitCluster := -1

	div := fastdiv.NewUint32(uint32(w))

	var wg sync.WaitGroup
	for worker := 0; worker < w; worker++ {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k, candId := range candidates {
				if div.Mod(uint32(k)) != uint32(worker) {
					continue
				}
				if found.Load() {
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}

				rep := table.ById(candId)
				if rep == nil || rep.Released() {
					continue
				}

				if confirmPair(query, rep, params) {
					mu.Lock()
					if !sealed {
						sealed = true
						if idx, ok := reps[candId]; ok {
							hitCluster = idx
						}
						found.Store(true)
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()

	if sealed {
		return true, hitCluster
	}
	return false, -1
}

// ubTMfast is the §4.4 fast-tier early-accept bound: a fast-TM this close
// to 1 is accepted outright without a refined rerun.
func ubTMfast(c float64) float64 {
	return 0.9*c + 0.1
}

// lbTMfast is the §4.4 fast-tier early-reject bound below which refinement
// cannot plausibly rescue the pair. Mode s<=1 keys off molecule type, like
// lbHwRMSD.
func lbTMfast(c float64, s int, molX, molY int) float64 {
	if s <= 1 {
		if molX+molY > 0 {
			return 0.60 * c
		}
		return 0.80 * c
	}
	return 0.9 * c
}

// tierDecision is the pure §4.4 two-tier verdict, split out from
// confirmPair so the band logic (scenario 5, §8) is testable without
// running the aligner: fastTM alone can early-accept or early-reject; a
// fastTM in [lbFast, ubFast) is inconclusive and refinedTM decides.
func tierDecision(fastTM, refinedTM, c float64, useFast bool, lbFast, ubFast float64) bool {
	if fastTM >= ubFast || (fastTM >= c && useFast) {
		return true
	}
	if fastTM < lbFast {
		return false
	}
	return refinedTM >= c
}

// confirmPair runs the §4.4 two-tier protocol for a single (query, rep)
// pair.
func confirmPair(query, rep *chain.Record, params Params) bool {
	c := params.Cutoff
	s := params.Mode
	x, y := query.Length(), rep.Length()

	ubFast := ubTMfast(c)
	lbFast := lbTMfast(c, s, query.MolType, rep.MolType)

	useFast := params.Fast || math.Sqrt(float64(x)*float64(y)) >= fastUB

	tm1, tm2, _, _, _ := align.TMAlignMain(
		query.Coords, rep.Coords,
		query.SeqCodes, rep.SeqCodes,
		query.SecCodes, rep.SecCodes,
		useFast, query.MolType+rep.MolType, c,
	)
	fastTM := Combine(tm1, tm2, s)

	if fastTM >= ubFast || (fastTM >= c && useFast) || fastTM < lbFast {
		return tierDecision(fastTM, 0, c, useFast, lbFast, ubFast)
	}

	tm1, tm2, _, _, _ = align.TMAlignMain(
		query.Coords, rep.Coords,
		query.SeqCodes, rep.SeqCodes,
		query.SecCodes, rep.SecCodes,
		false, query.MolType+rep.MolType, c,
	)
	refinedTM := Combine(tm1, tm2, s)
	return tierDecision(fastTM, refinedTM, c, useFast, lbFast, ubFast)
}
