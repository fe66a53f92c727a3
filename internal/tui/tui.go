// Package tui is a terminal triage view over the inbox: search,
// browse threads, and read the model's analysis without leaving the
// shell.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inboxpilot/internal/apiclient"
)

// ListFunc fetches the thread listing for a query.
type ListFunc func(ctx context.Context, query string) ([]apiclient.ThreadSummary, error)

// AnalyzeFunc runs the analysis pipeline on one thread.
type AnalyzeFunc func(ctx context.Context, id string) (apiclient.AnalyzeResult, error)

type state int

const (
	stateInput state = iota
	stateLoading
	stateList
	stateDetail
)

// threadsMsg is sent when the thread listing arrives.
type threadsMsg struct {
	threads []apiclient.ThreadSummary
	err     error
}

// analysisMsg is sent when a thread's analysis arrives.
type analysisMsg struct {
	result apiclient.AnalyzeResult
	err    error
}

// Model is the Bubble Tea model for the triage TUI.
type Model struct {
	queryInput textinput.Model
	listFn     ListFunc
	analyzeFn  AnalyzeFunc

	threads  []apiclient.ThreadSummary
	cursor   int
	analysis *apiclient.AnalyzeResult

	state  state
	err    error
	cancel context.CancelFunc
}

// NewModel creates the triage model over the given fetchers.
func NewModel(listFn ListFunc, analyzeFn AnalyzeFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "Search your inbox (empty for everything)..."
	ti.Focus()
	ti.Width = 60

	return Model{
		queryInput: ti,
		listFn:     listFn,
		analyzeFn:  analyzeFn,
		state:      stateInput,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case threadsMsg:
		return m.handleThreads(msg)
	case analysisMsg:
		return m.handleAnalysis(msg)
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEscape:
		return m.handleEscape()

	case tea.KeyEnter:
		switch m.state {
		case stateInput:
			m.state = stateLoading
			m.err = nil
			return m.startFetch(m.queryInput.Value())
		case stateList:
			if len(m.threads) == 0 {
				return m, nil
			}
			m.state = stateLoading
			m.analysis = nil
			return m.startAnalyze(m.threads[m.cursor].ID)
		}

	case tea.KeyUp:
		if m.state == stateList && m.cursor > 0 {
			m.cursor--
		}

	case tea.KeyDown:
		if m.state == stateList && m.cursor < len(m.threads)-1 {
			m.cursor++
		}
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateLoading:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		// Fall back to wherever makes sense: the list if we have one,
		// otherwise the query prompt.
		if len(m.threads) > 0 {
			m.state = stateList
		} else {
			m.state = stateInput
			m.queryInput.Focus()
		}
		return m, nil
	case stateDetail:
		m.state = stateList
		m.analysis = nil
		return m, nil
	case stateList:
		m.state = stateInput
		m.queryInput.Focus()
		return m, nil
	}
	return m, tea.Quit
}

func (m Model) handleThreads(msg threadsMsg) (tea.Model, tea.Cmd) {
	m.cancel = nil
	if msg.err != nil {
		m.err = msg.err
		m.state = stateInput
		m.queryInput.Focus()
		return m, nil
	}

	m.err = nil
	m.threads = msg.threads
	m.cursor = 0
	m.state = stateList
	return m, nil
}

func (m Model) handleAnalysis(msg analysisMsg) (tea.Model, tea.Cmd) {
	m.cancel = nil
	if msg.err != nil {
		m.err = msg.err
		m.state = stateList
		return m, nil
	}

	m.err = nil
	m.analysis = &msg.result
	m.state = stateDetail
	return m, nil
}

func (m *Model) startFetch(query string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return *m, func() tea.Msg {
		threads, err := m.listFn(ctx, query)
		return threadsMsg{threads: threads, err: err}
	}
}

func (m *Model) startAnalyze(id string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return *m, func() tea.Msg {
		result, err := m.analyzeFn(ctx, id)
		return analysisMsg{result: result, err: err}
	}
}

var (
	subjectStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	senderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Inbox triage"))
	b.WriteString("\n\n")

	switch m.state {
	case stateInput:
		b.WriteString("  " + m.queryInput.View())
		b.WriteString("\n")

	case stateLoading:
		b.WriteString("  Working...\n")

	case stateList:
		if len(m.threads) == 0 {
			b.WriteString("  No threads found.\n")
		} else {
			b.WriteString(fmt.Sprintf("  %d threads:\n\n", len(m.threads)))
			for i, t := range m.threads {
				cursor := "  "
				subject := t.Subject
				if subject == "" {
					subject = "(no subject)"
				}
				line := subjectStyle.Render(subject)
				if i == m.cursor {
					cursor = "> "
					line = selectedStyle.Render(subject)
				}
				b.WriteString(fmt.Sprintf("  %s%s\n", cursor, line))
				b.WriteString(fmt.Sprintf("     %s\n", senderStyle.Render(t.From)))
				b.WriteString(fmt.Sprintf("     %s\n\n", t.Snippet))
			}
		}

	case stateDetail:
		if m.analysis != nil {
			a := m.analysis.Analysis
			b.WriteString("  " + subjectStyle.Render(m.threads[m.cursor].Subject) + "\n\n")
			b.WriteString("  " + a.Summary + "\n\n")
			b.WriteString("  " + tagStyle.Render(fmt.Sprintf("[%s] [%s] [%s]", a.Sentiment, a.Tone, a.Urgency)) + "\n")
			for _, p := range a.KeyPoints {
				b.WriteString("   - " + p + "\n")
			}
			if len(m.analysis.Suggestions) > 0 {
				b.WriteString("\n  Meeting request detected. Open slots:\n")
				for _, s := range m.analysis.Suggestions {
					b.WriteString(fmt.Sprintf("   - %s\n", s.Start.Format("2006-01-02 3:04 PM")))
				}
			}
		}
	}

	if m.err != nil {
		b.WriteString(fmt.Sprintf("\n  Error: %s\n", m.err))
	}

	b.WriteString("\n  esc: back • ctrl+c: quit")
	if m.state == stateList {
		b.WriteString(" • ↑/↓: navigate • enter: analyze")
	}
	b.WriteString("\n")

	return b.String()
}
