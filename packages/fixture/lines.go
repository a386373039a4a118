package fixture

import (
	"fmt"
	"os"
	"strings"
)

// ReadLines returns the lines of a fixture file in order. A trailing
// newline does not produce an extra empty line, "\r\n" endings are
// accepted, and blank lines in the middle are kept.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text the way ReadLines does.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

