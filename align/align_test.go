package align

import (
	"math"
	"testing"

	"github.com/bioclust/tmclust/chain"
)

func TestKabschIdentity(t *testing.T) {
	p := []chain.Point3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	rot, trans, rmsd := Kabsch(p, p)
	if rmsd > 1e-9 {
		t.Errorf("rmsd for identical point sets = %v, want ~0", rmsd)
	}
	id := identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(rot[i][j]-id[i][j]) > 1e-6 {
				t.Errorf("rot[%d][%d] = %v, want %v", i, j, rot[i][j], id[i][j])
			}
		}
	}
	if math.Abs(trans.X) > 1e-6 || math.Abs(trans.Y) > 1e-6 || math.Abs(trans.Z) > 1e-6 {
		t.Errorf("trans = %v, want ~0", trans)
	}
}

func TestKabschTranslation(t *testing.T) {
	p := []chain.Point3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 1}}
	q := make([]chain.Point3, len(p))
	shift := chain.Point3{X: 5, Y: -3, Z: 2}
	for i, pt := range p {
		q[i] = addPoint(pt, shift)
	}
	_, _, rmsd := Kabsch(p, q)
	if rmsd > 1e-6 {
		t.Errorf("rmsd for pure translation = %v, want ~0", rmsd)
	}
}

func TestTMScoreSelfAlignedIsOne(t *testing.T) {
	d := make([]float64, 50)
	tm := TMScore(d, 50)
	if math.Abs(tm-1.0) > 1e-9 {
		t.Errorf("TMScore of all-zero distances = %v, want 1.0", tm)
	}
}

func TestTMScoreClampsNonFinite(t *testing.T) {
	if got := TMScore(nil, 0); got != 0 {
		t.Errorf("TMScore(nil, 0) = %v, want 0", got)
	}
}

func TestD0FloorsAtMin(t *testing.T) {
	if got := D0(1); got != D0Min {
		t.Errorf("D0(1) = %v, want floor %v", got, D0Min)
	}
}

func TestDPAlignIdentityDiagonal(t *testing.T) {
	n := 5
	scoreFn := func(i, j int) float64 {
		if i == j {
			return 1
		}
		return -1
	}
	pairs := DPAlign(scoreFn, n, n, 1, 0.5, false)
	matched := matchedPairs(pairs)
	if len(matched) != n {
		t.Fatalf("matched pairs = %d, want %d", len(matched), n)
	}
	for _, p := range matched {
		if p.I != p.J {
			t.Errorf("pair (%d,%d): want diagonal correspondence", p.I, p.J)
		}
	}
}

func TestTMAlignMainIdenticalChains(t *testing.T) {
	x := []chain.Point3{
		{X: 0, Y: 0, Z: 0}, {X: 3.8, Y: 0, Z: 0}, {X: 7.6, Y: 0, Z: 0},
		{X: 11.4, Y: 0, Z: 0}, {X: 15.2, Y: 0, Z: 0},
	}
	tm1, tm2, _, _, _ := TMAlignMain(x, x, nil, nil, nil, nil, false, -2, 0.5)
	if tm1 < 0.95 || tm2 < 0.95 {
		t.Errorf("TM1=%v TM2=%v for identical chains, want both near 1", tm1, tm2)
	}
}

func TestHwRMSDMainDegenerateChainClampsToZero(t *testing.T) {
	x := []chain.Point3{{X: 0, Y: 0, Z: 0}}
	y := []chain.Point3{{X: 0, Y: 0, Z: 0}}
	tm1, tm2, _, _, _ := HwRMSDMain(x, y, nil, nil, nil, nil, nil, 0, 3)
	if math.IsNaN(tm1) || math.IsNaN(tm2) {
		t.Errorf("TM1/TM2 must never be NaN for degenerate input, got %v %v", tm1, tm2)
	}
}
