package reqcheck

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffText renders a line-oriented diff between two name sets, sorted, with
// "-" marking names missing from actual and "+" marking extras. It gives a
// reviewer the same view a text diff of two normalized files would.
func DiffText(expected, actual []string) string {
	a := joinSorted(expected)
	b := joinSorted(actual)

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func joinSorted(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n") + "\n"
}
