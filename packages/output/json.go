package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Version  string      `json:"version,omitempty"`
	Flags    []string    `json:"flags"`
	Summary  JSONSummary `json:"summary"`
	Cases    []JSONCase  `json:"cases"`
	Error    string      `json:"error,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONCase represents a single case result
type JSONCase struct {
	Name      string         `json:"name"`
	State     string         `json:"state"`
	FailedAt  string         `json:"failedAt,omitempty"`
	Passed    bool           `json:"passed"`
	Duration  float64        `json:"duration"`
	Error     string         `json:"error,omitempty"`
	Artifact  string         `json:"artifact,omitempty"`
	Responses []JSONResponse `json:"responses,omitempty"`
	Expected  []string       `json:"expected,omitempty"`
	Diff      string         `json:"diff,omitempty"`
	Latency   *JSONLatency   `json:"latency,omitempty"`
}

// JSONResponse represents one replayed request
type JSONResponse struct {
	Line     int      `json:"line"`
	Args     []string `json:"args"`
	Body     string   `json:"body"`
	ExitCode int      `json:"exitCode"`
	Duration float64  `json:"duration"`
}

// JSONLatency summarizes client invocation times in milliseconds
type JSONLatency struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
}

// JSONFormatter formats run results as JSON
type JSONFormatter struct {
	writer io.Writer
	output JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		output: JSONOutput{Flags: []string{}, Cases: make([]JSONCase, 0)},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		if w != nil {
			f.writer = w
		}
	}
}

func (f *JSONFormatter) FormatHeader(version, runID string) {
	f.output.Version = version
	f.output.RunID = runID
}

func (f *JSONFormatter) FormatEvent(runner.Event) {
	// Progress is not part of the JSON report
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	if result == nil {
		return
	}
	f.output.RunID = result.RunID
	if len(result.Flags) > 0 {
		f.output.Flags = result.Flags
	}

	for _, c := range result.Cases {
		jc := JSONCase{
			Name:     c.Name,
			State:    c.State.String(),
			Passed:   c.State == runner.Passed,
			Duration: ms(c.Duration),
			Error:    errString(c.Err),
			Artifact: c.Artifact,
			Expected: c.Expected,
		}
		if c.State == runner.Failed {
			jc.FailedAt = c.FailedAt.String()
			if len(c.Expected) > 0 {
				jc.Diff = compare.Diff(c.Expected, c.Actual())
			}
		}
		for _, r := range c.Responses {
			jc.Responses = append(jc.Responses, JSONResponse{
				Line:     r.Request.Line,
				Args:     r.Request.Args,
				Body:     r.Body,
				ExitCode: r.ExitCode,
				Duration: ms(r.Duration),
			})
		}
		if c.Latency.Count > 0 {
			jc.Latency = &JSONLatency{
				Count: c.Latency.Count,
				Min:   ms(c.Latency.Min),
				P50:   ms(c.Latency.P50),
				P95:   ms(c.Latency.P95),
				Max:   ms(c.Latency.Max),
			}
		}

		f.output.Summary.Total++
		if jc.Passed {
			f.output.Summary.Passed++
		} else {
			f.output.Summary.Failed++
		}
		f.output.Cases = append(f.output.Cases, jc)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	f.output.Error = errString(err)
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	f.output.Duration = ms(totalDuration)
	f.output.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.output)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
