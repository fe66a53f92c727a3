package tui

import (
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxpilot/internal/apiclient"
)

func stubListFn(threads []apiclient.ThreadSummary, err error) ListFunc {
	return func(_ context.Context, _ string) ([]apiclient.ThreadSummary, error) {
		return threads, err
	}
}

func stubAnalyzeFn(result apiclient.AnalyzeResult, err error) AnalyzeFunc {
	return func(_ context.Context, _ string) (apiclient.AnalyzeResult, error) {
		return result, err
	}
}

func sampleThreads() []apiclient.ThreadSummary {
	return []apiclient.ThreadSummary{
		{ID: "t1", Subject: "Kickoff", From: "alice@example.com", Snippet: "let's meet"},
		{ID: "t2", Subject: "Invoice", From: "billing@example.com", Snippet: "attached"},
		{ID: "t3", Subject: "Lunch?", From: "bob@example.com", Snippet: "today"},
	}
}

func TestModel_Init_ShowsQueryInput(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	assert.True(t, m.queryInput.Focused())
	assert.Equal(t, stateInput, m.state)
}

func TestModel_Init_ReturnsBlinkCmd(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	cmd := m.Init()
	require.NotNil(t, cmd)

	msg := cmd()
	assert.IsType(t, textinput.Blink(), msg)
}

func TestModel_Enter_LoadsThreads(t *testing.T) {
	m := NewModel(stubListFn(sampleThreads(), nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.queryInput.SetValue("from:alice")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)

	require.NotNil(t, cmd)
	assert.Equal(t, stateLoading, model.state)

	updated, _ = model.Update(cmd())
	model = updated.(Model)

	assert.Equal(t, stateList, model.state)
	assert.Len(t, model.threads, 3)
	assert.Equal(t, 0, model.cursor)
}

func TestModel_Navigate_MovesCursor(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.state = stateList
	m.threads = sampleThreads()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	model := updated.(Model)
	assert.Equal(t, 1, model.cursor)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(Model)
	assert.Equal(t, 2, model.cursor)

	// Down at the bottom stays at the bottom.
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(Model)
	assert.Equal(t, 2, model.cursor)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model = updated.(Model)
	assert.Equal(t, 1, model.cursor)
}

func TestModel_Enter_AnalyzesSelectedThread(t *testing.T) {
	result := apiclient.AnalyzeResult{
		Analysis: apiclient.Analysis{Summary: "Kickoff planning.", Urgency: "low"},
	}
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(result, nil))
	m.state = stateList
	m.threads = sampleThreads()
	m.cursor = 0

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, stateLoading, model.state)

	updated, _ = model.Update(cmd())
	model = updated.(Model)

	assert.Equal(t, stateDetail, model.state)
	require.NotNil(t, model.analysis)
	assert.Equal(t, "Kickoff planning.", model.analysis.Analysis.Summary)
	assert.Contains(t, model.View(), "Kickoff planning.")
}

func TestModel_Escape_WalksBack(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.state = stateDetail
	m.threads = sampleThreads()
	m.analysis = &apiclient.AnalyzeResult{}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	model := updated.(Model)
	assert.Equal(t, stateList, model.state)
	assert.Nil(t, model.analysis)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEscape})
	model = updated.(Model)
	assert.Equal(t, stateInput, model.state)
	assert.True(t, model.queryInput.Focused())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_EscapeDuringLoading_CancelsContext(t *testing.T) {
	fetchStarted := make(chan context.Context, 1)
	m := NewModel(func(ctx context.Context, query string) ([]apiclient.ThreadSummary, error) {
		fetchStarted <- ctx
		<-ctx.Done()
		return nil, ctx.Err()
	}, stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))

	m.queryInput.SetValue("test")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)
	assert.Equal(t, stateLoading, model.state)
	assert.NotNil(t, model.cancel, "cancel func should be set when a fetch starts")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if cmd != nil {
			cmd()
		}
	}()

	ctx := <-fetchStarted

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEscape})
	model = updated.(Model)
	assert.Equal(t, stateInput, model.state)

	<-done
	assert.Error(t, ctx.Err(), "context should be cancelled after Escape")
}

func TestModel_ThreadsError_ReturnsToInput(t *testing.T) {
	m := NewModel(stubListFn(nil, fmt.Errorf("server unavailable")), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.queryInput.SetValue("q")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)

	updated, _ = model.Update(cmd())
	model = updated.(Model)

	assert.Equal(t, stateInput, model.state)
	assert.Error(t, model.err)
	assert.Contains(t, model.View(), "server unavailable")
}

func TestModel_SuccessfulFetch_ClearsStaleError(t *testing.T) {
	m := NewModel(stubListFn(sampleThreads(), nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.err = fmt.Errorf("previous network error")
	m.state = stateLoading

	updated, _ := m.Update(threadsMsg{threads: sampleThreads()})
	model := updated.(Model)

	assert.Nil(t, model.err, "successful fetch must clear stale error")
	assert.Equal(t, stateList, model.state)
}

func TestModel_FetchCompletion_ClearsCancel(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))

	cancelled := false
	m.cancel = func() { cancelled = true }
	m.state = stateLoading

	updated, _ := m.Update(threadsMsg{threads: sampleThreads()})
	model := updated.(Model)

	assert.Nil(t, model.cancel, "cancel must be nil after fetch completes")
	assert.False(t, cancelled, "cancel should not be called on success, just cleared")

	model.cancel = func() {}
	updated, _ = model.Update(analysisMsg{err: fmt.Errorf("analyze failed")})
	model = updated.(Model)
	assert.Nil(t, model.cancel, "cancel must be nil after a failed analyze")
	assert.Error(t, model.err)
}

func TestModel_View_ListStatusBar(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.state = stateList
	m.threads = sampleThreads()

	view := m.View()

	assert.Contains(t, view, "navigate")
	assert.Contains(t, view, "enter: analyze")
	assert.Contains(t, view, "Kickoff")
	assert.Contains(t, view, "alice@example.com")
}

func TestModel_View_EmptyList(t *testing.T) {
	m := NewModel(stubListFn(nil, nil), stubAnalyzeFn(apiclient.AnalyzeResult{}, nil))
	m.state = stateList

	assert.Contains(t, m.View(), "No threads found.")
}
