// Package web serves the form-based UI and the JSON API the TUI and
// CLI talk to.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"inboxpilot/internal/analyze"
	"inboxpilot/internal/calendar"
	"inboxpilot/internal/config"
	"inboxpilot/internal/mail"
	"inboxpilot/internal/reply"
	"inboxpilot/internal/schedule"
	"inboxpilot/internal/translate"
)

//go:embed templates
var templateFS embed.FS

// Meeting lengths the booking form offers, in minutes.
var durationChoices = []int{15, 30, 45, 60, 90, 120}

// Mux is the route registry the handler binds to. Both *http.ServeMux
// and the server wrapper satisfy it.
type Mux interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// Deps are the services the handlers call into.
type Deps struct {
	Mail       mail.Client
	Calendar   calendar.Client
	Analyzer   *analyze.Analyzer
	Replies    *reply.Generator
	Translator *translate.Translator
	Scheduler  *schedule.Scheduler
	SMTP       *mail.SMTPSender // optional fallback when Gmail send fails
	Config     *config.Config
	Log        zerolog.Logger
}

// Handler renders the UI pages and the JSON API.
type Handler struct {
	deps      Deps
	templates *template.Template

	// now is a test seam so slot searches are reproducible.
	now func() time.Time
}

func New(deps Deps) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("Mon, Jan 2 2006 3:04 PM")
		},
		"formatSlot": func(t time.Time) string {
			return t.Format("2006-01-02 3:04 PM")
		},
		"title": titleCase,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{deps: deps, templates: tmpl, now: time.Now}, nil
}

// Register binds every route onto mux.
func (h *Handler) Register(mux Mux) {
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /threads/{id}", h.thread)
	mux.HandleFunc("POST /threads/{id}/analyze", h.analyzeThread)
	mux.HandleFunc("POST /threads/{id}/reply", h.sendReply)
	mux.HandleFunc("POST /threads/{id}/translate", h.translateThread)
	mux.HandleFunc("GET /calendar", h.calendarPage)
	mux.HandleFunc("POST /calendar/events", h.createEvent)
	mux.HandleFunc("POST /calendar/slots", h.findSlots)
	mux.HandleFunc("POST /calendar/events/{id}/cancel", h.cancelEvent)
	mux.HandleFunc("POST /calendar/events/{id}", h.updateEvent)

	mux.HandleFunc("GET /api/threads", h.apiThreads)
	mux.HandleFunc("GET /api/threads/{id}", h.apiThread)
	mux.HandleFunc("POST /api/threads/{id}/analyze", h.apiAnalyze)
	mux.HandleFunc("GET /api/slots", h.apiSlots)
}

// pageData carries everything any page template can show.
type pageData struct {
	Title   string
	Error   string
	Message string

	Query   string
	Threads []mail.Thread
	Thread  *mail.Thread

	Analysis    *analyze.Analysis
	Drafts      reply.Drafts
	Tones       []string
	Suggestions []schedule.Suggestion
	Translation *translate.TranslatedThread
	Languages   []translate.Language

	Events    []calendar.Event
	EditEvent *calendar.Event
	Slots     []schedule.Slot
	Durations []int
}

func (h *Handler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.deps.Log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// slotOptions builds the configured slot search, with optional
// per-request duration and horizon overrides.
func (h *Handler) slotOptions(duration time.Duration, daysAhead int) schedule.Options {
	cfg := h.deps.Config
	if duration <= 0 {
		duration = cfg.MeetingDuration
	}
	if daysAhead <= 0 {
		daysAhead = cfg.DaysAhead
	}
	return schedule.Options{
		Now:       h.now(),
		Location:  cfg.Location(),
		Duration:  duration,
		DaysAhead: daysAhead,
		DayStart:  cfg.BusinessDayStart,
		DayEnd:    cfg.BusinessDayEnd,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
