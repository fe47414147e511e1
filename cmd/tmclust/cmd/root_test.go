package cmd

import "testing"

func TestRootPersistentFlagsRegistered(t *testing.T) {
	for _, tc := range []struct {
		name      string
		shorthand string
	}{
		{"threads", "j"},
		{"quiet", "q"},
		{"infile-list", "i"},
	} {
		f := RootCmd.PersistentFlags().Lookup(tc.name)
		if f == nil {
			t.Fatalf("persistent flag %q not registered", tc.name)
		}
		if f.Shorthand != tc.shorthand {
			t.Errorf("flag %q shorthand = %q, want %q", tc.name, f.Shorthand, tc.shorthand)
		}
	}
}

func TestClusterAndInfoSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["cluster"] {
		t.Error(`"cluster" subcommand not registered on RootCmd`)
	}
	if !names["info"] {
		t.Error(`"info" subcommand not registered on RootCmd`)
	}
}
