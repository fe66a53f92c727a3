package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Tones accepted for generated replies.
const (
	ToneFormal = "formal"
	ToneCasual = "casual"
	ToneDirect = "direct"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	ServerAddr string

	GoogleClientID     string
	GoogleClientSecret string
	TokenPath          string

	OpenAIAPIKey string
	ChatModel    string
	EmbedModel   string

	MaxThreads      int
	MeetingDuration time.Duration
	DaysAhead       int
	DefaultTone     string
	DefaultLanguage string

	Timezone         string
	BusinessDayStart int
	BusinessDayEnd   int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	MemoryPath string
	LogLevel   string
}

// Location resolves the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SMTPConfigured reports whether the SMTP fallback sender can be used.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != ""
}

// Test seams.
var (
	loadDotenv  = func() { _ = godotenv.Load() }
	userHomeDir = os.UserHomeDir
)

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	loadDotenv()

	cfg := &Config{
		ServerAddr:         envOr("INBOXPILOT_SERVER_ADDR", ":8080"),
		GoogleClientID:     os.Getenv("INBOXPILOT_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("INBOXPILOT_GOOGLE_CLIENT_SECRET"),
		TokenPath:          envOr("INBOXPILOT_TOKEN_PATH", defaultTokenPath()),
		OpenAIAPIKey:       os.Getenv("INBOXPILOT_OPENAI_API_KEY"),
		ChatModel:          envOr("INBOXPILOT_CHAT_MODEL", "gpt-4o-mini"),
		EmbedModel:         envOr("INBOXPILOT_EMBED_MODEL", "text-embedding-3-small"),
		DefaultTone:        envOr("INBOXPILOT_DEFAULT_TONE", ToneFormal),
		DefaultLanguage:    envOr("INBOXPILOT_DEFAULT_LANGUAGE", "en"),
		Timezone:           envOr("INBOXPILOT_TIMEZONE", "UTC"),
		SMTPHost:           envOr("INBOXPILOT_SMTP_HOST", "smtp.gmail.com"),
		SMTPUsername:       os.Getenv("INBOXPILOT_SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("INBOXPILOT_SMTP_PASSWORD"),
		MemoryPath:         envOr("INBOXPILOT_MEMORY_PATH", "inboxpilot.db"),
		LogLevel:           envOr("INBOXPILOT_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.MaxThreads, err = envInt("INBOXPILOT_MAX_THREADS", 10); err != nil {
		return nil, err
	}
	durationMinutes, err := envInt("INBOXPILOT_MEETING_DURATION_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.MeetingDuration = time.Duration(durationMinutes) * time.Minute
	if cfg.DaysAhead, err = envInt("INBOXPILOT_DAYS_AHEAD", 7); err != nil {
		return nil, err
	}
	if cfg.BusinessDayStart, err = envInt("INBOXPILOT_BUSINESS_DAY_START", 9); err != nil {
		return nil, err
	}
	if cfg.BusinessDayEnd, err = envInt("INBOXPILOT_BUSINESS_DAY_END", 17); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = envInt("INBOXPILOT_SMTP_PORT", 587); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.GoogleClientID == "" {
		errs = append(errs, errors.New("INBOXPILOT_GOOGLE_CLIENT_ID is required"))
	}
	if c.GoogleClientSecret == "" {
		errs = append(errs, errors.New("INBOXPILOT_GOOGLE_CLIENT_SECRET is required"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("INBOXPILOT_OPENAI_API_KEY is required"))
	}

	if c.MaxThreads < 1 || c.MaxThreads > 100 {
		errs = append(errs, fmt.Errorf("INBOXPILOT_MAX_THREADS must be between 1 and 100, got %d", c.MaxThreads))
	}
	if c.MeetingDuration < 15*time.Minute || c.MeetingDuration > 8*time.Hour {
		errs = append(errs, fmt.Errorf("INBOXPILOT_MEETING_DURATION_MINUTES must be between 15 and 480, got %s", c.MeetingDuration))
	}
	if c.DaysAhead < 1 || c.DaysAhead > 30 {
		errs = append(errs, fmt.Errorf("INBOXPILOT_DAYS_AHEAD must be between 1 and 30, got %d", c.DaysAhead))
	}

	switch c.DefaultTone {
	case ToneFormal, ToneCasual, ToneDirect:
	default:
		errs = append(errs, fmt.Errorf("INBOXPILOT_DEFAULT_TONE must be formal, casual, or direct, got %q", c.DefaultTone))
	}

	if len(c.DefaultLanguage) != 2 || !isAlpha(c.DefaultLanguage) {
		errs = append(errs, fmt.Errorf("INBOXPILOT_DEFAULT_LANGUAGE must be a 2-letter language code, got %q", c.DefaultLanguage))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("INBOXPILOT_TIMEZONE %q is not a valid IANA timezone", c.Timezone))
	}

	if c.BusinessDayStart < 0 || c.BusinessDayStart > 23 {
		errs = append(errs, fmt.Errorf("INBOXPILOT_BUSINESS_DAY_START must be between 0 and 23, got %d", c.BusinessDayStart))
	}
	if c.BusinessDayEnd < 1 || c.BusinessDayEnd > 24 {
		errs = append(errs, fmt.Errorf("INBOXPILOT_BUSINESS_DAY_END must be between 1 and 24, got %d", c.BusinessDayEnd))
	}
	if c.BusinessDayStart >= c.BusinessDayEnd {
		errs = append(errs, fmt.Errorf("business day start (%d) must be before end (%d)", c.BusinessDayStart, c.BusinessDayEnd))
	}

	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("INBOXPILOT_SMTP_PORT must be a valid port, got %d", c.SMTPPort))
	}

	return errors.Join(errs...)
}

func defaultTokenPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "inboxpilot", "token.json")
	}
	home, err := userHomeDir()
	if err != nil {
		return "token.json"
	}
	return filepath.Join(home, ".config", "inboxpilot", "token.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return n, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
