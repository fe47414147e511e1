package cluster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadHintsPairwiseSymmetric(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hints.tsv")
	content := "chainA\tchainB\tchainC\nchainD\tchainE\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	hints, err := ReadHints(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, query := range []string{"chainA", "chainB", "chainC"} {
		hinted := hints.Lookup(query)
		if hinted == nil {
			t.Fatalf("Lookup(%q) = nil, want a hint set", query)
		}
		for _, other := range []string{"chainA", "chainB", "chainC"} {
			if other == query {
				continue
			}
			if !Hinted(hinted, other) {
				t.Errorf("Lookup(%q) missing hint for %q", query, other)
			}
		}
	}

	if hints.Lookup("chainA") != nil && Hinted(hints.Lookup("chainA"), "chainD") {
		t.Error("chainA should not be hinted against chainD (different line)")
	}
}

func TestHintLookupMissingLabel(t *testing.T) {
	var hints HintSet
	if got := hints.Lookup("nope"); got != nil {
		t.Errorf("Lookup on nil HintSet = %v, want nil", got)
	}
	if Hinted(nil, "anything") {
		t.Error("Hinted(nil, ...) = true, want false")
	}
}
