package reqcheck

import "sort"

// Result describes the difference between two requirement name sets.
type Result struct {
	// Missing are names declared in the expected listing but absent from
	// the actual one.
	Missing []string
	// Extra are names present in the actual listing but not expected.
	Extra []string
}

// Equal reports whether the two sets matched.
func (r *Result) Equal() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

// Compare performs the set-equality check between two lists of canonical
// package names. The check passes if and only if the sets are identical;
// version constraints were already discarded by parsing.
func Compare(expected, actual []string) *Result {
	expectedSet := toSet(expected)
	actualSet := toSet(actual)

	result := &Result{}
	for name := range expectedSet {
		if _, ok := actualSet[name]; !ok {
			result.Missing = append(result.Missing, name)
		}
	}
	for name := range actualSet {
		if _, ok := expectedSet[name]; !ok {
			result.Extra = append(result.Extra, name)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Extra)
	return result
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
