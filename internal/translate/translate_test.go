package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inboxpilot/internal/mail"
)

type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "Hello, could we schedule a meeting for next week to discuss the project?", "en"},
		{"spanish", "Hola, ¿podríamos programar una reunión la próxima semana para hablar del proyecto?", "es"},
		{"german", "Hallo, könnten wir nächste Woche ein Treffen vereinbaren, um das Projekt zu besprechen?", "de"},
		{"empty defaults to english", "   ", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "xx", LanguageName("xx"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("ja"))
	assert.False(t, Supported("xx"))
}

func TestTranslateTextFallsBackOnError(t *testing.T) {
	chatter := &MockChatter{}
	chatter.On("Chat", mock.Anything, mock.Anything).
		Return("", errors.New("model unavailable"))

	tr := NewTranslator(chatter, zerolog.Nop())

	out := tr.TranslateText(context.Background(), "Hello there", "es")

	assert.Equal(t, "Hello there", out)
}

func TestTranslateMessageSkipsSameLanguage(t *testing.T) {
	chatter := &MockChatter{}
	tr := NewTranslator(chatter, zerolog.Nop())

	msg := mail.Message{
		Subject: "Project update",
		Body:    "Hello, could we schedule a meeting for next week to discuss the project?",
	}
	out := tr.TranslateMessage(context.Background(), msg, "en")

	assert.Equal(t, msg.Subject, out.Subject)
	assert.Equal(t, msg.Body, out.Body)
	assert.Equal(t, "en", out.OriginalLanguage)
	chatter.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestTranslateThread(t *testing.T) {
	chatter := &MockChatter{}
	chatter.On("Chat", mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) > 0
	})).Return("Hola", nil)

	tr := NewTranslator(chatter, zerolog.Nop())

	thread := mail.Thread{
		ID: "t1",
		Messages: []mail.Message{
			{Subject: "Greetings", Body: "Hello, could we schedule a meeting for next week to discuss the project?"},
		},
	}
	out, err := tr.TranslateThread(context.Background(), thread, "es")

	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "Hola", out.Messages[0].Subject)
	assert.Equal(t, "Hola", out.Messages[0].Body)
	assert.Equal(t, "en", out.Messages[0].OriginalLanguage)
	assert.Equal(t, "es", out.Messages[0].TranslatedLanguage)
}

func TestTranslateThreadUnsupportedLanguage(t *testing.T) {
	tr := NewTranslator(&MockChatter{}, zerolog.Nop())

	_, err := tr.TranslateThread(context.Background(), mail.Thread{}, "xx")

	assert.ErrorContains(t, err, "unsupported language")
}

func TestFormatTranslation(t *testing.T) {
	out := FormatTranslation("Hello", "Hola", "en", "es")

	assert.Contains(t, out, "Original (en):\nHello")
	assert.Contains(t, out, "Translation (es):\nHola")
}
