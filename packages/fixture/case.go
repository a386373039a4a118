// Package fixture locates the files that make up a test case.
//
// A case named "test1" is a directory test1/ under the suite root holding
// test1.cc (the server program), curl.txt (one client invocation per line)
// and ans.txt (one expected response per line).
package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// SourceExt is the extension of a case's program source.
	SourceExt = ".cc"
	// RequestScriptFile holds the recorded client requests of a case.
	RequestScriptFile = "curl.txt"
	// AnswersFile holds the expected responses of a case.
	AnswersFile = "ans.txt"
)

// DefaultCases is the case list run when none is given.
var DefaultCases = []string{"test1", "test2", "test3", "test4", "test5"}

// Case is one named unit of testing.
type Case struct {
	Name              string
	Dir               string
	SourcePath        string
	RequestScriptPath string
	AnswersPath       string
	// ArtifactPath is empty until the case has been built.
	ArtifactPath string
}

// SourceFile returns the source path of case name relative to the suite root.
func SourceFile(name string) string {
	return filepath.Join(name, name+SourceExt)
}

// Load describes case name under root. It does not touch the filesystem;
// call Validate to check the files exist.
func Load(root, name string) (*Case, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, name)
	return &Case{
		Name:              name,
		Dir:               dir,
		SourcePath:        filepath.Join(root, SourceFile(name)),
		RequestScriptPath: filepath.Join(dir, RequestScriptFile),
		AnswersPath:       filepath.Join(dir, AnswersFile),
	}, nil
}

// ValidateName rejects names that cannot double as a directory name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("case name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid case name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("invalid case name %q: must not contain path separators", name)
	}
	return nil
}

// Validate checks that the source, request script and answers exist.
func (c *Case) Validate() error {
	var missing []string
	for _, p := range []string{c.SourcePath, c.RequestScriptPath, c.AnswersPath} {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("case %s: missing %s", c.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Discover returns the names of all directories under root that contain a
// program named after the directory, sorted.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read suite directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, SourceFile(e.Name()))); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
