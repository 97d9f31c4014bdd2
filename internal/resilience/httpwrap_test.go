package resilience_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghufronakbar/hasmart-pos/internal/resilience"
)

func TestDoBodyReadableAfterReturn(t *testing.T) {
	payload := bytes.Repeat([]byte("invoice-line,"), 4<<20/13)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	cl := resilience.HTTPClient{Client: server.Client(), Timeout: 5 * time.Second}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// The body must stay readable after Do returns; the attempt deadline is
	// only released when the caller closes it.
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Len(t, data, len(payload))
	require.NoError(t, resp.Body.Close())
}

func TestDoRetriesServerErrorsThenCarriesBody(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":{"code":"UPSTREAM","message":"gudang offline"}}`)
	}))
	t.Cleanup(server.Close)

	cl := resilience.HTTPClient{
		Client:      server.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, 3, hits)

	var statusErr *resilience.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	require.Contains(t, string(statusErr.Body), "gudang offline")
}

func TestDoRecoversOnLaterAttempt(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(server.Close)

	cl := resilience.HTTPClient{
		Client:      server.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "ok", string(body))
	require.Equal(t, 2, hits)
}

func TestDoOpenBreakerShortCircuits(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	t.Cleanup(server.Close)

	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	require.True(t, breaker.Allow())
	breaker.Report(false)

	cl := resilience.HTTPClient{Client: server.Client(), Breaker: breaker, MaxAttempts: 2}
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = cl.Do(context.Background(), req)
	require.True(t, errors.Is(err, resilience.ErrOpenCircuit))
	require.Zero(t, hits)
}
