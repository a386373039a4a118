package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/limetest/packages/fixture"
)

// ReplayError reports that a request script could not be read or a client
// invocation could not be run.
type ReplayError struct {
	Script string
	Line   int
	Err    error
}

func (e *ReplayError) Error() string {
	if e.Script == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("replay %s line %d: %v", e.Script, e.Line, e.Err)
	}
	return fmt.Sprintf("replay %s: %v", e.Script, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Request is one line of a request script.
type Request struct {
	// Line is the 1-based line number in the script.
	Line int
	Raw  string
	Args []string
}

// LoadScript reads the non-empty lines of a request script in order.
func LoadScript(path string) ([]Request, error) {
	lines, err := fixture.ReadLines(path)
	if err != nil {
		return nil, &ReplayError{Script: path, Err: errors.Unwrap(err)}
	}
	requests, err := ParseScript(lines)
	var replayErr *ReplayError
	if errors.As(err, &replayErr) {
		replayErr.Script = path
	}
	return requests, err
}

// ParseScript tokenizes script lines, skipping blank ones. Errors are
// *ReplayError values naming the offending line.
func ParseScript(lines []string) ([]Request, error) {
	var requests []Request
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		args, err := Tokenize(line)
		if err != nil {
			return nil, &ReplayError{Line: i + 1, Err: err}
		}
		requests = append(requests, Request{Line: i + 1, Raw: line, Args: args})
	}
	return requests, nil
}

// Tokenize splits a line into arguments on spaces and tabs. Single or
// double quotes group text into one argument and a backslash escapes the
// next character, so a line without quotes splits exactly on whitespace.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range line {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
			inToken = true
		case '\'':
			if inDoubleQuote {
				current.WriteRune(r)
			} else {
				inSingleQuote = !inSingleQuote
			}
			inToken = true
		case '"':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				inDoubleQuote = !inDoubleQuote
			}
			inToken = true
		case ' ', '\t', '\r':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if inSingleQuote || inDoubleQuote {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// FirstURL returns the first argument in requests that looks like an
// http(s) URL, or "".
func FirstURL(requests []Request) string {
	for _, req := range requests {
		for _, a := range req.Args {
			if isURL(a) {
				return a
			}
		}
	}
	return ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
