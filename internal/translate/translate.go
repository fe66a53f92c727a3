// Package translate detects message languages and translates threads
// to a target language via the language model.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/rs/zerolog"

	"inboxpilot/internal/llm"
	"inboxpilot/internal/mail"
)

// Language pairs an ISO 639-1 code with its English name.
type Language struct {
	Code string
	Name string
}

// SupportedLanguages lists the translation targets the UI offers.
var SupportedLanguages = []Language{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"zh", "Chinese"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
}

// LanguageName resolves a code to its display name, falling back to
// the code itself for unknown targets.
func LanguageName(code string) string {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// Supported reports whether code is on the offered list.
func Supported(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// TranslatedMessage is a message with its translation metadata.
type TranslatedMessage struct {
	mail.Message
	OriginalLanguage   string
	TranslatedLanguage string
}

// TranslatedThread mirrors a thread with per-message translations.
type TranslatedThread struct {
	ID       string
	Messages []TranslatedMessage
}

// Translator translates mail content through the model.
type Translator struct {
	chat llm.Chatter
	log  zerolog.Logger
}

func NewTranslator(chat llm.Chatter, log zerolog.Logger) *Translator {
	return &Translator{chat: chat, log: log}
}

// DetectLanguage returns the ISO 639-1 code of text, defaulting to
// English when detection gives nothing usable.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}
	code := whatlanggo.Detect(text).Lang.Iso6391()
	if code == "" {
		return "en"
	}
	return code
}

// TranslateText translates text to the target language. Failures fall
// back to the original text so the UI never shows a hole.
func (t *Translator) TranslateText(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out, err := t.chat.Chat(ctx, llm.TranslationPrompt(LanguageName(target), text))
	if err != nil || strings.TrimSpace(out) == "" {
		t.log.Error().Err(err).Str("target", target).Msg("translation failed")
		return text
	}
	return strings.TrimSpace(out)
}

// TranslateMessage translates a message's subject and body. Messages
// already in the target language pass through untouched.
func (t *Translator) TranslateMessage(ctx context.Context, msg mail.Message, target string) TranslatedMessage {
	source := DetectLanguage(msg.Body)
	out := TranslatedMessage{Message: msg, OriginalLanguage: source, TranslatedLanguage: target}
	if source == target {
		return out
	}
	out.Subject = t.TranslateText(ctx, msg.Subject, target)
	out.Body = t.TranslateText(ctx, msg.Body, target)
	return out
}

// TranslateThread translates every message in the thread.
func (t *Translator) TranslateThread(ctx context.Context, thread mail.Thread, target string) (TranslatedThread, error) {
	if !Supported(target) {
		return TranslatedThread{}, fmt.Errorf("translate thread: unsupported language %q", target)
	}
	out := TranslatedThread{ID: thread.ID, Messages: make([]TranslatedMessage, 0, len(thread.Messages))}
	for _, msg := range thread.Messages {
		out.Messages = append(out.Messages, t.TranslateMessage(ctx, msg, target))
	}
	return out, nil
}

// FormatTranslation renders a side-by-side original and translation.
func FormatTranslation(original, translated, sourceLang, targetLang string) string {
	return fmt.Sprintf("Original (%s):\n%s\n\nTranslation (%s):\n%s",
		sourceLang, original, targetLang, translated)
}
