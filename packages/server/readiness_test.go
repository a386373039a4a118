package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadiness(t *testing.T) {
	t.Run("default is a fixed delay", func(t *testing.T) {
		r, err := NewReadiness(ReadinessConfig{})
		require.NoError(t, err)
		assert.Equal(t, Delay(DefaultDelay), r)
	})

	t.Run("custom delay", func(t *testing.T) {
		r, err := NewReadiness(ReadinessConfig{Mode: ReadinessDelay, Delay: time.Second})
		require.NoError(t, err)
		assert.Equal(t, Delay(time.Second), r)
	})

	t.Run("probe", func(t *testing.T) {
		r, err := NewReadiness(ReadinessConfig{Mode: ReadinessProbe, URL: "http://localhost:8080/"})
		require.NoError(t, err)
		require.IsType(t, &Probe{}, r)
		assert.Equal(t, "http://localhost:8080/", r.(*Probe).URL)
	})

	t.Run("none", func(t *testing.T) {
		r, err := NewReadiness(ReadinessConfig{Mode: ReadinessNone})
		require.NoError(t, err)
		assert.Equal(t, None{}, r)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := NewReadiness(ReadinessConfig{Mode: "callback"})
		assert.Error(t, err)
	})
}

func TestDelay_Wait(t *testing.T) {
	start := time.Now()
	require.NoError(t, Delay(50*time.Millisecond).Wait(context.Background(), ""))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Delay(time.Hour).Wait(ctx, ""), context.Canceled)
}

func TestNone_Wait(t *testing.T) {
	assert.NoError(t, None{}.Wait(context.Background(), "http://localhost:1/"))
}

func TestProbe_Wait(t *testing.T) {
	t.Run("ready server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		p := &Probe{Timeout: time.Second}
		assert.NoError(t, p.Wait(context.Background(), srv.URL))
	})

	t.Run("explicit URL wins over target", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		p := &Probe{URL: srv.URL, Timeout: time.Second}
		assert.NoError(t, p.Wait(context.Background(), "http://127.0.0.1:1/"))
	})

	t.Run("server never comes up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		p := &Probe{Timeout: 200 * time.Millisecond, Interval: 10 * time.Millisecond}
		err := p.Wait(context.Background(), url)
		require.Error(t, err)

		var readyErr *ReadinessError
		require.ErrorAs(t, err, &readyErr)
		assert.Equal(t, url, readyErr.URL)
		assert.Equal(t, 200*time.Millisecond, readyErr.Timeout)
	})

	t.Run("no URL", func(t *testing.T) {
		var readyErr *ReadinessError
		assert.ErrorAs(t, (&Probe{}).Wait(context.Background(), ""), &readyErr)
	})
}
