package chain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	table := Table{
		{Id: 0, MolType: MolProtein, Label: "one.pdb:chainA", Coords: []Point3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}},
		{Id: 1, MolType: MolNucleic, Label: "two.pdb", Coords: []Point3{{X: 7, Y: 8, Z: 9}}},
	}
	for _, rec := range table {
		rec.SetCoords(rec.Coords)
	}

	path := filepath.Join(t.TempDir(), "chains.cache")
	if err := WriteCache(path, table); err != nil {
		t.Fatal(err)
	}

	cf, err := OpenCache(path)
	if err != nil {
		t.Fatal(err)
	}
	defer cf.Close()

	if cf.NumChains() != len(table) {
		t.Fatalf("NumChains() = %d, want %d", cf.NumChains(), len(table))
	}

	for i, want := range table {
		got, err := cf.Chain(i)
		if err != nil {
			t.Fatalf("Chain(%d): %v", i, err)
		}
		if got.Id != want.Id || got.MolType != want.MolType || got.Label != want.Label {
			t.Errorf("Chain(%d) = %+v, want id/molType/label %d/%d/%q", i, got, want.Id, want.MolType, want.Label)
		}
		if got.Length() != want.Length() {
			t.Errorf("Chain(%d).Length() = %d, want %d", i, got.Length(), want.Length())
		}
		for j, p := range want.Coords {
			if got.Coords[j] != p {
				t.Errorf("Chain(%d).Coords[%d] = %+v, want %+v", i, j, got.Coords[j], p)
			}
		}
	}
}

func TestOpenCacheRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-cache")
	if err := os.WriteFile(path, []byte("not a tmclust cache, just some bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenCache(path); err == nil {
		t.Error("OpenCache on a file with the wrong magic should error")
	}
}

func TestOpenCacheMissingFile(t *testing.T) {
	if _, err := OpenCache(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("OpenCache on a nonexistent path should error")
	}
}
