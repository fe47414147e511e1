package chain

import (
	"github.com/twotwotwo/sorts"
)

// lengthKey packs (length, id) so that sorting by the packed key alone
// yields the spec's "length descending, ties broken by original id
// ascending" order without a second stable pass — twotwotwo/sorts'
// Quicksort is not guaranteed stable on its own, so ties are made
// self-breaking by baking the id into the sort key.
type lengthKey struct {
	length int
	id     int
}

type byLengthThenId []lengthKey

func (a byLengthThenId) Len() int { return len(a) }
func (a byLengthThenId) Less(i, j int) bool {
	if a[i].length != a[j].length {
		return a[i].length > a[j].length // descending length
	}
	return a[i].id < a[j].id // ascending id breaks ties
}
func (a byLengthThenId) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

// LengthSortedOrder returns a permutation of chain ids ordered by length
// descending, ties broken by original id (spec.md §3 Length-sorted order).
//
// Sorting runs on github.com/twotwotwo/sorts, matching the teacher's own
// use of that package (kmcp/cmd/util.go sets sorts.MaxProcs once in
// getOptions) for large, CPU-parallel in-place sorts.
func LengthSortedOrder(t Table) []int {
	keys := make(byLengthThenId, len(t))
	for i, rec := range t {
		keys[i] = lengthKey{length: rec.Length(), id: rec.Id}
	}
	sorts.Quicksort(keys)

	order := make([]int, len(keys))
	for i, k := range keys {
		order[i] = k.id
	}
	return order
}

// SetSortThreads configures the parallelism of LengthSortedOrder's
// underlying sort, mirroring kmcp/cmd/util.go's getOptions, which sets
// sorts.MaxProcs = threads once per process.
func SetSortThreads(threads int) {
	if threads > 0 {
		sorts.MaxProcs = threads
	}
}
