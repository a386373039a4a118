package replay

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latency summarizes how long the client invocations of one replay took.
type Latency struct {
	Count int64
	Min   time.Duration
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
	Total time.Duration
}

// Summarize builds a latency summary of responses. Durations are recorded
// in microseconds, from 1µs up to one minute.
func Summarize(responses []Response) Latency {
	var l Latency
	if len(responses) == 0 {
		return l
	}

	hist := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
	for _, r := range responses {
		us := r.Duration.Microseconds()
		if us < 1 {
			us = 1
		}
		_ = hist.RecordValue(us)
		l.Total += r.Duration
	}

	l.Count = hist.TotalCount()
	l.Min = time.Duration(hist.Min()) * time.Microsecond
	l.P50 = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
	l.P95 = time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond
	l.Max = time.Duration(hist.Max()) * time.Microsecond
	return l
}
