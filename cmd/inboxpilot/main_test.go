package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxpilot/internal/apiclient"
)

func noopApp() app {
	return app{
		serve:  func(ctx context.Context, out io.Writer) error { return nil },
		runTUI: func(ctx context.Context, serverURL string) error { return nil },
		login:  func(ctx context.Context, out io.Writer) error { return nil },
		logout: func(out io.Writer) error { return nil },
		threads: func(ctx context.Context, serverURL, query string) ([]apiclient.ThreadSummary, error) {
			return nil, nil
		},
		slots: func(ctx context.Context, serverURL string, durationMinutes, days int) ([]apiclient.Slot, error) {
			return nil, nil
		},
	}
}

func TestRun_ReturnsNilOnSuccess(t *testing.T) {
	err := run([]string{}, noopApp())
	assert.NoError(t, err)
}

func TestThreadsCommand_PrintsThreads(t *testing.T) {
	a := noopApp()
	a.threads = func(_ context.Context, _, query string) ([]apiclient.ThreadSummary, error) {
		assert.Equal(t, "from:alice", query)
		return []apiclient.ThreadSummary{
			{ID: "t1", Subject: "Kickoff", From: "alice@example.com", Date: "Mon, 2 Mar 2026", Snippet: "let's meet"},
			{ID: "t2", From: "bob@example.com"},
		}, nil
	}

	var buf bytes.Buffer
	err := runWithOutput([]string{"threads", "-q", "from:alice"}, a, &buf)

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "1. Kickoff")
	assert.Contains(t, output, "alice@example.com")
	assert.Contains(t, output, "2. (no subject)")
}

func TestThreadsCommand_NoThreads(t *testing.T) {
	var buf bytes.Buffer
	err := runWithOutput([]string{"threads"}, noopApp(), &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No threads found.")
}

func TestThreadsCommand_Error(t *testing.T) {
	a := noopApp()
	a.threads = func(_ context.Context, _, _ string) ([]apiclient.ThreadSummary, error) {
		return nil, errors.New("server unavailable")
	}

	err := runWithOutput([]string{"threads"}, a, io.Discard)
	assert.ErrorContains(t, err, "server unavailable")
}

func TestSlotsCommand_PrintsSlots(t *testing.T) {
	a := noopApp()
	a.slots = func(_ context.Context, _ string, durationMinutes, days int) ([]apiclient.Slot, error) {
		assert.Equal(t, 60, durationMinutes)
		assert.Equal(t, 5, days)
		start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
		return []apiclient.Slot{{Start: start, End: start.Add(time.Hour)}}, nil
	}

	var buf bytes.Buffer
	err := runWithOutput([]string{"slots", "--duration", "60", "--days", "5"}, a, &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2026-03-02 9:30 AM to 10:30 AM")
}

func TestSlotsCommand_NoSlots(t *testing.T) {
	var buf bytes.Buffer
	err := runWithOutput([]string{"slots"}, noopApp(), &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No open slots found.")
}

func TestServerFlag_ReachesCommand(t *testing.T) {
	a := noopApp()
	var got string
	a.threads = func(_ context.Context, serverURL, _ string) ([]apiclient.ThreadSummary, error) {
		got = serverURL
		return nil, nil
	}

	err := runWithOutput([]string{"threads", "--server", "http://example.com:9999"}, a, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9999", got)
}

func TestServerFlag_Default(t *testing.T) {
	a := noopApp()
	var got string
	a.slots = func(_ context.Context, serverURL string, _, _ int) ([]apiclient.Slot, error) {
		got = serverURL
		return nil, nil
	}

	require.NoError(t, runWithOutput([]string{"slots"}, a, io.Discard))
	assert.Equal(t, defaultServerURL, got)
}

func TestLoginCommand_Dispatches(t *testing.T) {
	a := noopApp()
	called := false
	a.login = func(_ context.Context, out io.Writer) error {
		called = true
		return nil
	}

	require.NoError(t, runWithOutput([]string{"login"}, a, io.Discard))
	assert.True(t, called)
}

func TestLogoutCommand_Dispatches(t *testing.T) {
	a := noopApp()
	called := false
	a.logout = func(out io.Writer) error {
		called = true
		return nil
	}

	require.NoError(t, runWithOutput([]string{"logout"}, a, io.Discard))
	assert.True(t, called)
}

func TestServeCommand_PropagatesError(t *testing.T) {
	a := noopApp()
	a.serve = func(_ context.Context, _ io.Writer) error {
		return errors.New("address already in use")
	}

	err := runWithOutput([]string{"serve"}, a, io.Discard)
	assert.ErrorContains(t, err, "address already in use")
}

func TestUnknownCommand_Errors(t *testing.T) {
	err := runWithOutput([]string{"bogus"}, noopApp(), io.Discard)
	assert.Error(t, err)
}
