package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/build"
	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/abdul-hamid-achik/limetest/packages/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(line int, url, body string) replay.Response {
	return replay.Response{
		Request:  replay.Request{Line: line, Raw: "-s " + url, Args: []string{"-s", url}},
		Body:     body,
		Duration: 2 * time.Millisecond,
	}
}

func passedCase(name string) *runner.CaseResult {
	responses := []replay.Response{response(1, "http://localhost:8080/", "hello world")}
	return &runner.CaseResult{
		Name:      name,
		State:     runner.Passed,
		Artifact:  "/suite/" + name + ".out",
		Responses: responses,
		Expected:  []string{"hello world"},
		Latency:   replay.Summarize(responses),
		Duration:  40 * time.Millisecond,
	}
}

func mismatchCase(name string) *runner.CaseResult {
	return &runner.CaseResult{
		Name:     name,
		State:    runner.Failed,
		FailedAt: runner.Compared,
		Err: &runner.CaseError{Case: name, Stage: runner.Compared, Err: &compare.ContentMismatchError{
			Index: 1, Expected: "B", Actual: "X",
		}},
		Responses: []replay.Response{
			response(1, "http://localhost:8080/a", "A"),
			response(2, "http://localhost:8080/b", "X"),
		},
		Expected: []string{"A", "B"},
		Duration: 30 * time.Millisecond,
	}
}

func failedRun() *runner.RunResult {
	return &runner.RunResult{
		RunID:    "run-1",
		Flags:    build.Flags{"-lhttp"},
		Cases:    []*runner.CaseResult{passedCase("test1"), mismatchCase("test2")},
		Duration: 100 * time.Millisecond,
	}
}

func TestConsole_Events(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatEvent(runner.Event{Stage: runner.Pending, Message: "got module flags: -lhttp"})
	f.FormatEvent(runner.Event{Case: "test1", Stage: runner.Built, Message: "compiled: test1/test1.cc"})

	assert.Equal(t, "[INFO] got module flags: -lhttp\n[INFO] compiled: test1/test1.cc\n", buf.String())
}

func TestConsole_AllPassed(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatHeader("v1.0.0", "run-1")
	f.FormatResult(&runner.RunResult{Cases: []*runner.CaseResult{passedCase("test1")}})

	assert.Equal(t, "[INFO] All test passed\n", buf.String())
}

func TestConsole_NothingPassedWithoutCases(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatResult(&runner.RunResult{})
	assert.Empty(t, buf.String())
}

func TestConsole_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "content mismatch",
			err:      mismatchCase("test2").Err,
			expected: "[ERROR] test failed\n\texpected: B\n\tgot: X\n",
		},
		{
			name:     "count mismatch",
			err:      &runner.CaseError{Case: "test1", Stage: runner.Compared, Err: &compare.StructuralMismatchError{Expected: 3, Actual: 2}},
			expected: "[ERROR] expected count: 3 != got count: 2\n",
		},
		{
			name:     "resolution",
			err:      &build.ResolutionError{Library: "http", Reason: "exit status 1"},
			expected: "[ERROR] failed to get pkg-config data for lib: http (exit status 1)\n",
		},
		{
			name:     "build with diagnostics",
			err:      &runner.CaseError{Case: "test1", Stage: runner.Built, Err: &build.BuildError{Source: "test1/test1.cc", ExitCode: 1, Diagnostics: "test1.cc:3: error\n"}},
			expected: "[ERROR] failed to compile file: test1/test1.cc (exit status 1)\ntest1.cc:3: error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatError(tt.err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestConsole_VerboseShowsDiffAndLatency(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.FormatHeader("v1.0.0", "run-1")
	f.FormatResult(failedRun())

	out := buf.String()
	assert.Contains(t, out, "limetest v1.0.0 run run-1")
	assert.Contains(t, out, "✓ test1")
	assert.Contains(t, out, "✗ test2")
	assert.Contains(t, out, "1 requests, min")
	assert.Contains(t, out, "-B")
	assert.Contains(t, out, "+X")
	assert.NotContains(t, out, "All test passed")
}

func TestNew(t *testing.T) {
	for _, name := range Formats {
		f, err := New(name, Options{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	f, err := New("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	_, err = New("html", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestJSON_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatHeader("v1.0.0", "run-1")
	f.FormatEvent(runner.Event{Message: "ignored"})
	f.FormatResult(failedRun())
	f.FormatError(mismatchCase("test2").Err)
	require.NoError(t, f.Flush(time.Second))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, "v1.0.0", out.Version)
	assert.Equal(t, []string{"-lhttp"}, out.Flags)
	assert.Equal(t, JSONSummary{Total: 2, Passed: 1, Failed: 1}, out.Summary)
	assert.Equal(t, 1000.0, out.Duration)
	assert.Contains(t, out.Error, "test failed at response 2")

	require.Len(t, out.Cases, 2)
	assert.True(t, out.Cases[0].Passed)
	assert.Equal(t, "passed", out.Cases[0].State)
	require.NotNil(t, out.Cases[0].Latency)
	assert.Equal(t, int64(1), out.Cases[0].Latency.Count)

	failed := out.Cases[1]
	assert.False(t, failed.Passed)
	assert.Equal(t, "failed", failed.State)
	assert.Equal(t, "compared", failed.FailedAt)
	assert.Contains(t, failed.Diff, "-B")
	assert.Equal(t, "X", failed.Responses[1].Body)
	assert.Equal(t, 2, failed.Responses[1].Line)
}

func TestJSON_ErrorWithoutCases(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(&runner.RunResult{RunID: "run-2"})
	f.FormatError(&build.ResolutionError{Library: "http"})
	require.NoError(t, f.Flush(0))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Empty(t, out.Cases)
	assert.Equal(t, "failed to get pkg-config data for lib: http", out.Error)
	assert.Zero(t, out.Summary.Total)
}

func TestJUnit_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatHeader("v1.0.0", "run-1")
	run := failedRun()
	run.Cases = append(run.Cases, &runner.CaseResult{
		Name:     "test3",
		State:    runner.Failed,
		FailedAt: runner.Built,
		Err:      &runner.CaseError{Case: "test3", Stage: runner.Built, Err: &build.BuildError{Source: "test3/test3.cc", ExitCode: 1}},
	})
	f.FormatResult(run)
	f.FormatError(run.Cases[2].Err)
	require.NoError(t, f.Flush(time.Second))

	assert.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)

	require.Len(t, suites.TestSuites, 1)
	suite := suites.TestSuites[0]
	assert.Equal(t, "run-1", suite.ID)
	assert.Contains(t, suite.SystemErr, "failed to compile file: test3/test3.cc")
	assert.Contains(t, suite.Properties, JUnitProperty{Name: "flags", Value: "-lhttp"})

	require.Len(t, suite.TestCases, 3)
	assert.Nil(t, suite.TestCases[0].Failure)
	require.NotNil(t, suite.TestCases[1].Failure)
	assert.Equal(t, "MismatchError", suite.TestCases[1].Failure.Type)
	assert.Contains(t, suite.TestCases[1].Failure.Content, "+X")
	require.NotNil(t, suite.TestCases[2].Error)
	assert.Equal(t, "BuildError", suite.TestCases[2].Error.Type)
}

func TestTAP_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatHeader("v1.0.0", "run-1")
	run := failedRun()
	f.FormatResult(run)
	f.FormatError(run.Cases[1].Err)
	require.NoError(t, f.Flush(100*time.Millisecond))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "TAP version 13", lines[0])
	assert.Equal(t, "# run run-1", lines[1])
	assert.Equal(t, "1..2", lines[2])
	assert.Equal(t, "ok 1 - test1", lines[3])
	assert.Equal(t, "not ok 2 - test2", lines[4])
	assert.Contains(t, buf.String(), "  stage: compared\n")
	assert.Contains(t, buf.String(), `  message: "test failed at response 2\n\texpected: B\n\tgot: X"`)
	assert.Contains(t, buf.String(), "Bail out! test failed at response 2 \texpected: B \tgot: X\n")
	assert.Contains(t, buf.String(), "# time 100ms\n")
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"say \"hi\""`, escapeYAML(`say "hi"`))
}
