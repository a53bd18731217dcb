package kvector

// SearchResult is a catalog StarPair returned by a database query, along
// with the absolute error between the query's target distance and the
// pair's actual angular distance.
type SearchResult struct {
	Result StarPair[int]
	Error  float64
}

// HasSameStar reports whether a and b's catalog pairs share a star.
func HasSameStar(a, b SearchResult) bool {
	return HasSame(a.Result, b.Result)
}

// IndexOfPair returns the index of the first SearchResult in list whose
// catalog pair equals find (as a set), or ok=false if none match.
func IndexOfPair(find StarPair[int], list []SearchResult) (index int, ok bool) {
	for i, r := range list {
		if AreSame(r.Result, find) {
			return i, true
		}
	}
	return 0, false
}

// RemoveDiff removes every element of a for which same(element, b[j]) is
// false for all j in b, in place, returning the filtered slice. This
// mirrors the Rust `List::remove_diff` helper used by the pilot finder to
// narrow candidate lists down to ones with support in a second list.
func RemoveDiff(a []SearchResult, b []SearchResult, same func(SearchResult, SearchResult) bool) []SearchResult {
	kept := a[:0]
	for _, x := range a {
		for _, y := range b {
			if same(x, y) {
				kept = append(kept, x)
				break
			}
		}
	}
	return kept
}
