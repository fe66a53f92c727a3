// Package reply drafts replies in three tones and remembers what it
// produced for similarity lookups.
package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"inboxpilot/internal/analyze"
	"inboxpilot/internal/config"
	"inboxpilot/internal/llm"
)

// Tones in the order drafts are presented.
var Tones = []string{config.ToneFormal, config.ToneCasual, config.ToneDirect}

// Drafts maps a tone to its generated reply text.
type Drafts map[string]string

// Generator produces reply drafts from a thread analysis.
type Generator struct {
	chat   llm.Chatter
	memory *Memory // optional
	log    zerolog.Logger
}

// NewGenerator creates a Generator. memory may be nil, in which case
// drafts are not persisted.
func NewGenerator(chat llm.Chatter, memory *Memory, log zerolog.Logger) *Generator {
	return &Generator{chat: chat, memory: memory, log: log}
}

// Generate asks the model for formal, casual and direct drafts. Missing
// sections get an apology placeholder so the UI always has three tabs.
// Memory failures are logged, never surfaced.
func (g *Generator) Generate(ctx context.Context, analysis analyze.Analysis) (Drafts, error) {
	prompt := llm.ReplyGenerationPrompt(FormatAnalysis(analysis))
	response, err := g.chat.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate replies: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("generate replies: empty response")
	}

	drafts := ParseDrafts(response)

	if g.memory != nil {
		for tone, text := range drafts {
			if isPlaceholder(text) {
				continue
			}
			if err := g.memory.Store(ctx, StoredReply{
				Tone:      tone,
				Reply:     text,
				Sentiment: analysis.Sentiment,
				Urgency:   analysis.Urgency,
			}); err != nil {
				g.log.Warn().Err(err).Str("tone", tone).Msg("reply memory store failed")
			}
		}
	}

	return drafts, nil
}

// FormatAnalysis renders an analysis as prompt input.
func FormatAnalysis(a analyze.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thread Analysis:\n%s\n\n", a.Summary)
	fmt.Fprintf(&b, "Sentiment: %s\n", a.Sentiment)
	fmt.Fprintf(&b, "Tone: %s\n", a.Tone)
	fmt.Fprintf(&b, "Urgency: %s\n\n", a.Urgency)
	b.WriteString("Key Points:\n")
	for _, p := range a.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return b.String()
}

// ParseDrafts splits a model response into tone sections. Section labels
// ("Formal:", "Casual:", "Direct:") are matched case-insensitively at
// line starts; text before the first label is ignored.
func ParseDrafts(response string) Drafts {
	drafts := Drafts{}
	var currentTone string
	var current []string

	flush := func() {
		if currentTone != "" && len(current) > 0 {
			drafts[currentTone] = strings.Join(current, "\n")
		}
		current = nil
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if tone := matchToneLabel(line); tone != "" {
			flush()
			currentTone = tone
			// Keep any text following the label on the same line.
			rest := strings.TrimPrefix(line[len(tone):], ":")
			if rest = strings.TrimSpace(rest); rest != "" {
				current = append(current, rest)
			}
			continue
		}
		if currentTone != "" {
			current = append(current, line)
		}
	}
	flush()

	for _, tone := range Tones {
		if strings.TrimSpace(drafts[tone]) == "" {
			drafts[tone] = placeholder(tone)
		}
	}
	return drafts
}

func matchToneLabel(line string) string {
	lower := strings.ToLower(line)
	for _, tone := range Tones {
		if strings.HasPrefix(lower, tone) {
			return tone
		}
	}
	return ""
}

func placeholder(tone string) string {
	return fmt.Sprintf("I apologize, but I couldn't generate a %s reply at this time.", tone)
}

func isPlaceholder(text string) bool {
	return strings.HasPrefix(text, "I apologize, but I couldn't generate")
}
