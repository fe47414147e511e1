package cluster

import (
	"context"
	"testing"

	"github.com/bioclust/tmclust/chain"
)

func TestTMfastBounds(t *testing.T) {
	c := 0.5
	if got := ubTMfast(c); got != 0.55 {
		t.Errorf("ubTMfast(%v) = %v, want 0.55", c, got)
	}
	if got := lbTMfast(c, 2, 0, 0); got != 0.45 {
		t.Errorf("lbTMfast(%v, s=2) = %v, want 0.45", c, got)
	}
	if got := lbTMfast(c, 1, 0, 0); got != 0.40 {
		t.Errorf("lbTMfast(%v, s=1, protein) = %v, want 0.40", c, got)
	}
	if got := lbTMfast(c, 1, 1, 0); got != 0.30 {
		t.Errorf("lbTMfast(%v, s=1, nucleic) = %v, want 0.30", c, got)
	}
}

// TestTierDecisionRefinedRescue mirrors scenario 5 (§8) literally: a fast
// combined score of 0.46 with TMcut=0.5 falls inside [lb_TMfast,
// ub_TMfast) = [0.45, 0.55), so the pair must be decided by the refined
// score alone, not the fast one.
func TestTierDecisionRefinedRescue(t *testing.T) {
	c := 0.5
	lbFast := lbTMfast(c, 2, 0, 0)
	ubFast := ubTMfast(c)
	fastTM := 0.46
	if fastTM < lbFast || fastTM >= ubFast {
		t.Fatalf("test setup invalid: fastTM=%v not within [%v,%v)", fastTM, lbFast, ubFast)
	}

	if hit := tierDecision(fastTM, 0.55, c, false, lbFast, ubFast); !hit {
		t.Error("refined TM 0.55 >= cutoff 0.5 should HIT, got no-HIT")
	}
	if hit := tierDecision(fastTM, 0.40, c, false, lbFast, ubFast); hit {
		t.Error("refined TM 0.40 < cutoff 0.5 should not HIT, got HIT")
	}
}

func TestTierDecisionFastEarlyAcceptAndReject(t *testing.T) {
	c := 0.5
	lbFast := lbTMfast(c, 2, 0, 0)
	ubFast := ubTMfast(c)

	if !tierDecision(0.9, 0, c, false, lbFast, ubFast) {
		t.Error("fastTM well above ubFast should early-accept without consulting refinedTM")
	}
	if tierDecision(0.1, 0, c, false, lbFast, ubFast) {
		t.Error("fastTM well below lbFast should early-reject without consulting refinedTM")
	}
	if !tierDecision(c, 0, c, true, lbFast, ubFast) {
		t.Error("fastTM == cutoff with useFast should accept without a refined rerun")
	}
}

func TestConfirmNoCandidatesIsNoHit(t *testing.T) {
	hit, idx := Confirm(context.Background(), &chain.Record{}, nil, nil, nil, Params{Workers: 2})
	if hit || idx != -1 {
		t.Errorf("Confirm with no candidates = (%v,%d), want (false,-1)", hit, idx)
	}
}
