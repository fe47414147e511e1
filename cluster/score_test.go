package cluster

import (
	"math"
	"testing"
)

func TestCombineModes(t *testing.T) {
	tm1, tm2 := 0.6, 0.9
	cases := map[int]float64{
		1: tm2,
		2: tm1,
		3: (tm1 + tm2) / 2,
		4: 2 / (1/tm1 + 1/tm2),
		5: math.Sqrt(tm1 * tm2),
		6: math.Sqrt((tm1*tm1 + tm2*tm2) / 2),
	}
	for s, want := range cases {
		if got := Combine(tm1, tm2, s); math.Abs(got-want) > 1e-9 {
			t.Errorf("Combine(%.2f,%.2f,%d) = %v, want %v", tm1, tm2, s, got, want)
		}
	}
}

func TestCombineHarmonicZeroLimit(t *testing.T) {
	if got := Combine(0, 0, 4); got != 0 {
		t.Errorf("Combine(0,0,4) = %v, want 0", got)
	}
}

// TestAOptS5LastAssignmentWins pins the documented s=5 -> a=-1 reading
// (DESIGN.md Open Question decision #2): s=5 appears in both the a=-2 and
// a=-1 groups; the later assignment must win.
func TestAOptS5LastAssignmentWins(t *testing.T) {
	if got := AOpt(5); got != -1 {
		t.Errorf("AOpt(5) = %d, want -1 (last-assignment-wins)", got)
	}
}

func TestAOptTable(t *testing.T) {
	cases := map[int]int{1: -1, 2: -2, 3: 1, 4: -2, 5: -1, 6: 0}
	for s, want := range cases {
		if got := AOpt(s); got != want {
			t.Errorf("AOpt(%d) = %d, want %d", s, got, want)
		}
	}
}

func TestPruneMoleculeMismatchAlwaysRejects(t *testing.T) {
	if !Prune(10, 10, -1, 1, 0.5, 2) {
		t.Error("Prune must reject protein/nucleic-acid mismatch regardless of length")
	}
}

func TestPruneModeRules(t *testing.T) {
	c := 0.5
	// s=2: reject if x < c*y
	if !Prune(4, 10, -1, -1, c, 2) {
		t.Error("Prune(4,10,s=2) should reject: 4 < 0.5*10")
	}
	if Prune(6, 10, -1, -1, c, 2) {
		t.Error("Prune(6,10,s=2) should accept: 6 >= 0.5*10")
	}
	// s=1: never rejects on length alone
	if Prune(1, 1000, -1, -1, c, 1) {
		t.Error("Prune(s=1) must never reject on length alone")
	}
}

// TestPrunerSafetyModeTwo is a property test over the Pruner-safety law (§8): if
// Prune rejects (x,y), no combined TM derived from TM1,TM2 in [0,1]
// respecting the length-normalisation identities (TM1 from L, TM2 from
// the shorter length, both capped by the ratio of lengths) should be able
// to reach the cutoff. For s=2 (TM by longer), this reduces exactly to
// the boundary x >= c*y, so any x strictly below it is safe to reject.
func TestPrunerSafetyModeTwo(t *testing.T) {
	c := 0.6
	for y := 1; y <= 200; y += 7 {
		for x := 1; x <= y; x += 5 {
			rejected := Prune(x, y, -1, -1, c, 2)
			maxPossibleTM1 := float64(x) / float64(y) // TM1 normalised by longer chain y
			if rejected && maxPossibleTM1 >= c {
				t.Fatalf("Prune rejected (%d,%d) but max achievable TM1=%v >= cutoff %v", x, y, maxPossibleTM1, c)
			}
		}
	}
}
