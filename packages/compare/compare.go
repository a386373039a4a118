// Package compare checks captured responses against the expected answers
// of a test case.
//
// Comparison is ordered and line based: the i-th captured response must
// equal the i-th answer once trailing whitespace is removed from both. The
// first difference ends the comparison.
package compare

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/abdul-hamid-achik/limetest/packages/fixture"
)

// StructuralMismatchError reports that the number of captured responses
// differs from the number of expected answers.
type StructuralMismatchError struct {
	Expected int
	Actual   int
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("expected count: %d != got count: %d", e.Expected, e.Actual)
}

// ContentMismatchError reports the first response that differs from its
// expected answer.
type ContentMismatchError struct {
	// Index is 0-based.
	Index    int
	Expected string
	Actual   string
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("test failed at response %d\n\texpected: %s\n\tgot: %s", e.Index+1, e.Expected, e.Actual)
}

// Normalize removes trailing whitespace, the only difference Compare
// tolerates.
func Normalize(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Compare checks actual against expected. It returns a
// *StructuralMismatchError when the lengths differ and a
// *ContentMismatchError for the first differing pair.
func Compare(expected, actual []string) error {
	if len(expected) != len(actual) {
		return &StructuralMismatchError{Expected: len(expected), Actual: len(actual)}
	}
	for i := range expected {
		if Normalize(expected[i]) != Normalize(actual[i]) {
			return &ContentMismatchError{Index: i, Expected: expected[i], Actual: actual[i]}
		}
	}
	return nil
}

// LoadAnswers reads the expected answers of a case.
func LoadAnswers(path string) ([]string, error) {
	return fixture.ReadLines(path)
}

// WriteAnswers replaces the answers file at path with the captured
// responses, one per line with trailing whitespace removed.
func WriteAnswers(path string, actual []string) error {
	var sb strings.Builder
	for _, a := range actual {
		sb.WriteString(Normalize(a))
		sb.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to update answers: %w", err)
	}
	return nil
}
