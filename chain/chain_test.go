package chain

import "testing"

func TestLengthSurvivesRelease(t *testing.T) {
	rec := &Record{Id: 1}
	rec.SetCoords([]Point3{{X: 0}, {X: 1}, {X: 2}})
	if got := rec.Length(); got != 3 {
		t.Fatalf("Length() = %d, want 3", got)
	}
	rec.Release()
	if !rec.Released() {
		t.Fatal("Released() = false after Release()")
	}
	if got := rec.Length(); got != 3 {
		t.Fatalf("Length() after Release() = %d, want 3", got)
	}
}

func TestLengthSortedOrder(t *testing.T) {
	table := Table{
		{Id: 0, len: 5},
		{Id: 1, len: 9},
		{Id: 2, len: 9},
		{Id: 3, len: 1},
	}
	order := LengthSortedOrder(table)
	want := []int{1, 2, 0, 3} // length desc, ties by id asc
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestResidueCode(t *testing.T) {
	cases := []struct {
		name string
		code byte
		nuc  bool
	}{
		{"ALA", 'A', false},
		{"GLY", 'G', false},
		{"DA", 'A', true},
		{"U", 'U', true},
		{"XYZ", 'X', false},
	}
	for _, c := range cases {
		code, nuc := ResidueCode(c.name)
		if code != c.code || nuc != c.nuc {
			t.Errorf("ResidueCode(%q) = (%q, %v), want (%q, %v)", c.name, code, nuc, c.code, c.nuc)
		}
	}
}

func TestDetectMolType(t *testing.T) {
	if got := DetectMolType(0, 0); got != MolUnknown {
		t.Errorf("DetectMolType(0,0) = %d, want MolUnknown", got)
	}
	if got := DetectMolType(10, 2); got != MolNucleic {
		t.Errorf("DetectMolType(10,2) = %d, want MolNucleic", got)
	}
	if got := DetectMolType(2, 10); got != MolProtein {
		t.Errorf("DetectMolType(2,10) = %d, want MolProtein", got)
	}
}
