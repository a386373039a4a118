package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Readiness modes accepted by NewReadiness.
const (
	ReadinessDelay = "delay"
	ReadinessProbe = "probe"
	ReadinessNone  = "none"
)

const (
	// DefaultDelay is the fixed wait used by the delay policy.
	DefaultDelay = 500 * time.Millisecond
	// DefaultProbeTimeout bounds the probe policy.
	DefaultProbeTimeout = 10 * time.Second
	// DefaultProbeInterval is the first pause between probe attempts.
	DefaultProbeInterval = 50 * time.Millisecond
	maxProbeInterval     = time.Second
)

// Readiness waits until a freshly started server can take requests.
// target is the URL the first request will hit; policies that do not
// contact the server ignore it.
type Readiness interface {
	Wait(ctx context.Context, target string) error
}

// ReadinessConfig selects and tunes a readiness policy.
type ReadinessConfig struct {
	Mode     string
	Delay    time.Duration
	URL      string
	Timeout  time.Duration
	Interval time.Duration
}

// NewReadiness builds the policy described by cfg. An empty mode means
// the delay policy.
func NewReadiness(cfg ReadinessConfig) (Readiness, error) {
	switch cfg.Mode {
	case "", ReadinessDelay:
		d := cfg.Delay
		if d <= 0 {
			d = DefaultDelay
		}
		return Delay(d), nil
	case ReadinessProbe:
		return &Probe{URL: cfg.URL, Timeout: cfg.Timeout, Interval: cfg.Interval}, nil
	case ReadinessNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown readiness mode %q (use delay, probe or none)", cfg.Mode)
	}
}

// Delay sleeps for a fixed duration. It cannot tell a slow server from a
// ready one.
type Delay time.Duration

// Wait sleeps for d or until ctx is done.
func (d Delay) Wait(ctx context.Context, _ string) error {
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// None does not wait at all.
type None struct{}

// Wait returns immediately.
func (None) Wait(context.Context, string) error {
	return nil
}

// Probe polls a URL until the server answers with any HTTP response.
type Probe struct {
	// URL overrides the target passed to Wait.
	URL      string
	Timeout  time.Duration
	Interval time.Duration
	Client   *http.Client
}

// Wait polls until a response arrives, the timeout passes or ctx is done.
// Pauses between attempts double from Interval up to one second.
func (p *Probe) Wait(ctx context.Context, target string) error {
	url := p.URL
	if url == "" {
		url = target
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if url == "" {
		return &ReadinessError{Timeout: timeout, Err: fmt.Errorf("no probe URL")}
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: time.Second}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &ReadinessError{URL: url, Timeout: timeout, Err: err}
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		lastErr = err

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &ReadinessError{URL: url, Timeout: timeout, Err: lastErr}
		case <-timer.C:
		}

		interval *= 2
		if interval > maxProbeInterval {
			interval = maxProbeInterval
		}
	}
}
