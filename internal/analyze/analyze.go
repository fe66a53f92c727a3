// Package analyze summarizes email threads with the language model and
// parses its free-text output into fixed fields.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"inboxpilot/internal/llm"
	"inboxpilot/internal/mail"
)

// Sentiment classifications.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Urgency levels.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// toneKeywords are the tones recognized in sentiment responses, in
// priority order.
var toneKeywords = []string{"formal", "casual", "urgent", "friendly", "professional"}

// Analysis is the structured result of analyzing a thread.
type Analysis struct {
	Summary   string
	Sentiment string
	Tone      string
	Urgency   string
	KeyPoints []string
}

// Analyzer runs the three analysis prompts against the model.
type Analyzer struct {
	chat llm.Chatter
	log  zerolog.Logger
}

// New creates an Analyzer.
func New(chat llm.Chatter, log zerolog.Logger) *Analyzer {
	return &Analyzer{chat: chat, log: log}
}

// AnalyzeThread analyzes a whole conversation. Model failures degrade to
// documented fallback values instead of failing the request: a broken
// model should never make the inbox unreadable.
func (a *Analyzer) AnalyzeThread(ctx context.Context, thread mail.Thread) (Analysis, error) {
	if len(thread.Messages) == 0 {
		return Analysis{}, fmt.Errorf("analyze: thread %s has no messages", thread.ID)
	}

	content := FormatThread(thread)
	result := Analysis{
		Summary:   "Unable to analyze thread content.",
		Sentiment: SentimentNeutral,
		Tone:      "unknown",
		Urgency:   UrgencyMedium,
		KeyPoints: []string{"Please review the email thread manually."},
	}

	if summary, err := a.chat.Chat(ctx, llm.ThreadAnalysisPrompt(content)); err != nil {
		a.log.Warn().Err(err).Str("thread", thread.ID).Msg("thread analysis failed")
	} else {
		result.Summary = summary
		if points := ExtractKeyPoints(summary); len(points) > 0 {
			result.KeyPoints = points
		}
	}

	if resp, err := a.chat.Chat(ctx, llm.SentimentPrompt(content)); err != nil {
		a.log.Warn().Err(err).Str("thread", thread.ID).Msg("sentiment analysis failed")
	} else {
		result.Sentiment, result.Tone = ParseSentiment(resp)
	}

	if resp, err := a.chat.Chat(ctx, llm.UrgencyPrompt(content)); err != nil {
		a.log.Warn().Err(err).Str("thread", thread.ID).Msg("urgency analysis failed")
	} else {
		result.Urgency = ParseUrgency(resp)
	}

	return result, nil
}

// FormatThread renders a conversation as prompt input, oldest first.
func FormatThread(thread mail.Thread) string {
	var b strings.Builder
	for _, m := range thread.Messages {
		fmt.Fprintf(&b, "From: %s\nDate: %s\nSubject: %s\nBody: %s\n", m.From, m.Date, m.Subject, m.Body)
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString("\n\n")
	}
	return b.String()
}

// ParseSentiment reads a sentiment classification out of free text.
// The first recognized sentiment word wins; default is neutral.
func ParseSentiment(response string) (sentiment, tone string) {
	lower := strings.ToLower(response)

	sentiment = SentimentNeutral
	if strings.Contains(lower, "positive") {
		sentiment = SentimentPositive
	} else if strings.Contains(lower, "negative") {
		sentiment = SentimentNegative
	}

	tone = "unknown"
	for _, kw := range toneKeywords {
		if strings.Contains(lower, kw) {
			tone = kw
			break
		}
	}
	return sentiment, tone
}

// ParseUrgency reads an urgency level out of free text. High beats
// medium; anything else is low.
func ParseUrgency(response string) string {
	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, UrgencyHigh):
		return UrgencyHigh
	case strings.Contains(lower, UrgencyMedium):
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ExtractKeyPoints collects bullet lines ("-", "*") from an analysis,
// falling back to numbered lines ("1." through "9.").
func ExtractKeyPoints(analysis string) []string {
	var points []string
	lines := strings.Split(analysis, "\n")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			if point := strings.TrimSpace(trimmed[1:]); point != "" {
				points = append(points, point)
			}
		}
	}
	if len(points) > 0 {
		return points
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 2 && trimmed[0] >= '1' && trimmed[0] <= '9' && trimmed[1] == '.' {
			if point := strings.TrimSpace(trimmed[2:]); point != "" {
				points = append(points, point)
			}
		}
	}
	return points
}
