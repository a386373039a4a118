package output

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one run of the suite
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	ID         string          `xml:"id,attr,omitempty"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
	SystemErr  string          `xml:"system-err,omitempty"`
}

// JUnitProperty is a name/value pair attached to a suite
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a response mismatch
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a case that could not be carried out
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitFormatter formats run results as JUnit XML
type JUnitFormatter struct {
	writer io.Writer
	suite  JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
		suite: JUnitTestSuite{
			Name:      "limetest",
			TestCases: make([]JUnitTestCase, 0),
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *JUnitFormatter) FormatHeader(version, runID string) {
	f.suite.ID = runID
	f.suite.Properties = append(f.suite.Properties, JUnitProperty{Name: "version", Value: version})
}

func (f *JUnitFormatter) FormatEvent(runner.Event) {
	// Progress is not part of the JUnit report
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	if result == nil {
		return
	}
	f.suite.ID = result.RunID
	f.suite.Time = result.Duration.Seconds()
	f.suite.Timestamp = time.Now().Format(time.RFC3339)
	if len(result.Flags) > 0 {
		f.suite.Properties = append(f.suite.Properties, JUnitProperty{Name: "flags", Value: result.Flags.String()})
	}

	for _, c := range result.Cases {
		tc := JUnitTestCase{
			Name:      c.Name,
			ClassName: "limetest",
			Time:      c.Duration.Seconds(),
		}

		if c.State == runner.Failed {
			if isMismatch(c.Err) {
				f.suite.Failures++
				tc.Failure = &JUnitFailure{
					Message: errString(c.Err),
					Type:    "MismatchError",
					Content: compare.Diff(c.Expected, c.Actual()),
				}
			} else {
				f.suite.Errors++
				tc.Error = &JUnitError{
					Message: errString(c.Err),
					Type:    errorType(c.FailedAt),
					Content: errString(c.Err),
				}
			}
		}

		f.suite.TestCases = append(f.suite.TestCases, tc)
	}
	f.suite.Tests = len(f.suite.TestCases)
}

func (f *JUnitFormatter) FormatError(err error) {
	f.suite.SystemErr = errString(err)
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	suites := JUnitTestSuites{
		Name:       "limetest",
		Tests:      f.suite.Tests,
		Failures:   f.suite.Failures,
		Errors:     f.suite.Errors,
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: []JUnitTestSuite{f.suite},
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.writer)
	return err
}

func isMismatch(err error) bool {
	var content *compare.ContentMismatchError
	var structural *compare.StructuralMismatchError
	return errors.As(err, &content) || errors.As(err, &structural)
}

func errorType(stage runner.State) string {
	switch stage {
	case runner.Pending:
		return "FixtureError"
	case runner.Built:
		return "BuildError"
	case runner.Launched, runner.Terminated:
		return "ServerError"
	case runner.Replayed:
		return "ReplayError"
	case runner.Compared:
		return "AnswersError"
	}
	return "Error"
}
