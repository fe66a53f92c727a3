package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_SECRET", "test-secret")
	t.Setenv("INBOXPILOT_OPENAI_API_KEY", "test-openai-key")
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 10, cfg.MaxThreads)
	assert.Equal(t, 30*time.Minute, cfg.MeetingDuration)
	assert.Equal(t, 7, cfg.DaysAhead)
	assert.Equal(t, ToneFormal, cfg.DefaultTone)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, 9, cfg.BusinessDayStart)
	assert.Equal(t, 17, cfg.BusinessDayEnd)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_MissingRequiredVars(t *testing.T) {
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_ID", "")
	t.Setenv("INBOXPILOT_GOOGLE_CLIENT_SECRET", "")
	t.Setenv("INBOXPILOT_OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INBOXPILOT_GOOGLE_CLIENT_ID is required")
	assert.Contains(t, err.Error(), "INBOXPILOT_GOOGLE_CLIENT_SECRET is required")
	assert.Contains(t, err.Error(), "INBOXPILOT_OPENAI_API_KEY is required")
}

func TestLoad_ReadsEnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("INBOXPILOT_SERVER_ADDR", ":9090")
	t.Setenv("INBOXPILOT_MAX_THREADS", "25")
	t.Setenv("INBOXPILOT_MEETING_DURATION_MINUTES", "60")
	t.Setenv("INBOXPILOT_TIMEZONE", "America/New_York")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, 25, cfg.MaxThreads)
	assert.Equal(t, time.Hour, cfg.MeetingDuration)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoad_RejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"threads too high", "INBOXPILOT_MAX_THREADS", "101", "INBOXPILOT_MAX_THREADS"},
		{"threads too low", "INBOXPILOT_MAX_THREADS", "0", "INBOXPILOT_MAX_THREADS"},
		{"duration too short", "INBOXPILOT_MEETING_DURATION_MINUTES", "5", "INBOXPILOT_MEETING_DURATION_MINUTES"},
		{"duration too long", "INBOXPILOT_MEETING_DURATION_MINUTES", "481", "INBOXPILOT_MEETING_DURATION_MINUTES"},
		{"days ahead too high", "INBOXPILOT_DAYS_AHEAD", "31", "INBOXPILOT_DAYS_AHEAD"},
		{"not a number", "INBOXPILOT_DAYS_AHEAD", "soon", "must be a number"},
		{"bad tone", "INBOXPILOT_DEFAULT_TONE", "sarcastic", "INBOXPILOT_DEFAULT_TONE"},
		{"bad language", "INBOXPILOT_DEFAULT_LANGUAGE", "english", "2-letter language code"},
		{"bad timezone", "INBOXPILOT_TIMEZONE", "Mars/Olympus", "not a valid IANA timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_BusinessDayOrdering(t *testing.T) {
	setRequired(t)
	t.Setenv("INBOXPILOT_BUSINESS_DAY_START", "18")
	t.Setenv("INBOXPILOT_BUSINESS_DAY_END", "9")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be before end")
}

func TestLoad_TokenPathDefault_UsesXDGConfigHome(t *testing.T) {
	setRequired(t)
	t.Setenv("INBOXPILOT_TOKEN_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/test-xdg-config", "inboxpilot", "token.json"), cfg.TokenPath)
}

func TestLoad_TokenPathDefault_FallsBackToHomeConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("INBOXPILOT_TOKEN_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/test-home")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/test-home", ".config", "inboxpilot", "token.json"), cfg.TokenPath)
}

func TestLoad_TokenPathDefault_FallsBackToTokenJSON_WhenHomeDirFails(t *testing.T) {
	setRequired(t)
	t.Setenv("INBOXPILOT_TOKEN_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	orig := userHomeDir
	userHomeDir = func() (string, error) { return "", fmt.Errorf("no home") }
	t.Cleanup(func() { userHomeDir = orig })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token.json", cfg.TokenPath)
}

func TestLoad_DotenvFilePopulatesConfig(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "INBOXPILOT_GOOGLE_CLIENT_ID=dotenv-id\n" +
		"INBOXPILOT_GOOGLE_CLIENT_SECRET=dotenv-secret\n" +
		"INBOXPILOT_OPENAI_API_KEY=dotenv-key\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0644))

	orig := loadDotenv
	loadDotenv = func() { _ = godotenv.Load(envPath) }
	t.Cleanup(func() { loadDotenv = orig })

	// Register for cleanup, then unset so godotenv can set them.
	for _, key := range []string{"INBOXPILOT_GOOGLE_CLIENT_ID", "INBOXPILOT_GOOGLE_CLIENT_SECRET", "INBOXPILOT_OPENAI_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-id", cfg.GoogleClientID)
	assert.Equal(t, "dotenv-secret", cfg.GoogleClientSecret)
	assert.Equal(t, "dotenv-key", cfg.OpenAIAPIKey)
}

func TestLoad_EnvVarsTakePrecedenceOverDotenv(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("INBOXPILOT_GOOGLE_CLIENT_ID=dotenv-id\n"), 0644))

	orig := loadDotenv
	loadDotenv = func() { _ = godotenv.Load(envPath) }
	t.Cleanup(func() { loadDotenv = orig })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-client-id", cfg.GoogleClientID)
}

func TestSMTPConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SMTPConfigured())

	cfg.SMTPUsername = "user@example.com"
	cfg.SMTPPassword = "app-password"
	assert.True(t, cfg.SMTPConfigured())
}
