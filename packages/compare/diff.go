package compare

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the expected answers and the
// captured responses, both normalized. It returns "" when they match.
func Diff(expected, actual []string) string {
	if Compare(expected, actual) == nil {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        normalizeLines(expected),
		B:        normalizeLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

func normalizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Normalize(l) + "\n"
	}
	return out
}
