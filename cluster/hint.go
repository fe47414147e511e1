package cluster

import (
	"runtime"
	"strings"

	"github.com/shenwei356/breader"
	"github.com/zeebo/wyhash"
)

// hashLabel condenses a chain label to a fixed-width key, matching
// kmcp/cmd/filter.go's wyhash.HashString(match.Target, 1) pattern for
// turning hot-loop string comparisons (millions of ranking lookups
// against a hint set) into uint64 map lookups instead.
func hashLabel(label string) uint64 {
	return wyhash.HashString(label, 1)
}

// HintSet is the tentative-cluster hint map (§3): query label -> set of
// labels considered a priori related, keyed by hashLabel rather than the
// raw string.
type HintSet map[uint64]map[uint64]bool

// Lookup returns the hint set for label, or an empty (nil-safe) map if
// label has no hints.
func (h HintSet) Lookup(label string) map[uint64]bool {
	if h == nil {
		return nil
	}
	return h[hashLabel(label)]
}

// Hinted reports whether label is a hinted candidate within hinted, the
// map returned by Lookup.
func Hinted(hinted map[uint64]bool, label string) bool {
	return hinted[hashLabel(label)]
}

type hintLine struct {
	labels []string
}

// ReadHints parses a tentative-cluster hint file (§6): plain text,
// tab-separated, one cluster per line; every label on a line is treated
// as a query against the others on that line, pairwise symmetric.
//
// Parsing fans out across goroutines via breader, matching the teacher's
// own chunked-parsing pattern in kmcp/cmd/filter.go for large tabular
// inputs — a hint file derived from an earlier clustering run over the
// same structure set can itself run to hundreds of thousands of lines.
func ReadHints(path string) (HintSet, error) {
	numCPUs := runtime.NumCPU()
	const chunkSize = 1000

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, false, nil
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, false, nil
		}
		return hintLine{labels: fields}, true, nil
	}

	reader, err := breader.NewBufferedReader(path, numCPUs, chunkSize, fn)
	if err != nil {
		return nil, err
	}

	hints := HintSet{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		for _, data := range chunk.Data {
			hl := data.(hintLine)
			for i, a := range hl.labels {
				ha := hashLabel(a)
				for j, b := range hl.labels {
					if i == j {
						continue
					}
					if hints[ha] == nil {
						hints[ha] = map[uint64]bool{}
					}
					hints[ha][hashLabel(b)] = true
				}
			}
		}
	}
	return hints, nil
}
