package cluster

import (
	"math"
	"testing"

	"github.com/bioclust/tmclust/chain"
)

func linearCoords(n int, xOffset float64) []chain.Point3 {
	pts := make([]chain.Point3, n)
	for i := 0; i < n; i++ {
		t := float64(i)
		pts[i] = chain.Point3{X: xOffset + t*3.8, Y: 2 * math.Sin(t*0.6), Z: 2 * math.Cos(t*0.6)}
	}
	return pts
}

func recWithCoords(id int, label string, coords []chain.Point3) *chain.Record {
	rec := &chain.Record{Id: id, MolType: chain.MolProtein, Label: label}
	rec.SetCoords(coords)
	rec.SeqCodes = make([]byte, len(coords)+1)
	rec.SecCodes = chain.AssignSecondaryStructure(coords)
	return rec
}

// TestRankHintBoost mirrors scenario 6 (§8): among several candidates none
// of which clear lb_HwRMSD on their own structural merit, the two that are
// hinted must survive ranking and sort above the unhinted ones.
func TestRankHintBoost(t *testing.T) {
	query := recWithCoords(0, "q", linearCoords(200, 0))

	table := chain.Table{query}
	var reps []int
	// Five structurally unrelated "representative" chains: none should
	// clear lb_HwRMSD against the query on structural merit alone. A plain
	// offset would be undone by superposition, so each rep's residue
	// spacing along X is stretched tenfold (38 instead of 3.8), which
	// leaves only a few residues able to overlay the query at once.
	for i := 1; i <= 5; i++ {
		coords := linearCoords(200, float64(i)*10000)
		for k := range coords {
			coords[k].X *= 10
		}
		rep := recWithCoords(i, "rep"+string(rune('0'+i)), coords)
		table = append(table, rep)
		reps = append(reps, i)
	}

	hints := HintSet{
		hashLabel("q"): {hashLabel("rep2"): true, hashLabel("rep4"): true},
	}

	out := Rank(query, reps, table, 0.5, 2, hints)

	hintedSeen := map[int]bool{}
	for _, c := range out {
		rep := table.ById(c.RepId)
		if rep.Label == "rep2" || rep.Label == "rep4" {
			hintedSeen[c.RepId] = true
		}
	}
	if len(hintedSeen) != 2 {
		t.Fatalf("expected both hinted candidates to survive ranking, got %d of them in %d results", len(hintedSeen), len(out))
	}
}

func TestRankEmptyOnNoRepresentatives(t *testing.T) {
	query := recWithCoords(0, "q", linearCoords(50, 0))
	out := Rank(query, nil, chain.Table{query}, 0.5, 2, nil)
	if len(out) != 0 {
		t.Errorf("Rank with no representatives = %d candidates, want 0", len(out))
	}
}

func TestRetentionCapBounds(t *testing.T) {
	if got := retentionCap(10); got != maxRepr {
		t.Errorf("retentionCap(10) = %d, want maxRepr=%d", got, maxRepr)
	}
	if got := retentionCap(5000); got != minRepr {
		t.Errorf("retentionCap(5000) = %d, want minRepr=%d", got, minRepr)
	}
	mid := retentionCap((fastLB + fastUB) / 2)
	if mid < minRepr || mid > maxRepr {
		t.Errorf("retentionCap(mid) = %d, want within [%d,%d]", mid, minRepr, maxRepr)
	}
}
