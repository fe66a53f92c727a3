package web

import (
	"encoding/json"
	"net/http"
	"time"

	"inboxpilot/internal/mail"
	"inboxpilot/internal/schedule"
)

// JSON shapes for the API the TUI and CLI consume.

type threadSummaryJSON struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

type messageJSON struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}

type threadJSON struct {
	ID       string        `json:"id"`
	Subject  string        `json:"subject"`
	Snippet  string        `json:"snippet"`
	Messages []messageJSON `json:"messages"`
}

type analysisJSON struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Tone      string   `json:"tone"`
	Urgency   string   `json:"urgency"`
	KeyPoints []string `json:"key_points"`
}

type slotJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type analyzeResponseJSON struct {
	Analysis    analysisJSON      `json:"analysis"`
	Drafts      map[string]string `json:"drafts,omitempty"`
	Suggestions []slotJSON        `json:"suggestions,omitempty"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (h *Handler) apiThreads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	threads, err := h.deps.Mail.ListThreads(r.Context(), query, int64(h.deps.Config.MaxThreads))
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}

	out := make([]threadSummaryJSON, 0, len(threads))
	for _, t := range threads {
		latest := t.Latest()
		out = append(out, threadSummaryJSON{
			ID:      t.ID,
			Subject: t.Subject(),
			From:    latest.From,
			Date:    latest.Date,
			Snippet: t.Snippet,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]threadSummaryJSON{"threads": out})
}

func (h *Handler) apiThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.deps.Mail.GetThread(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, threadToJSON(thread))
}

func (h *Handler) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	thread, err := h.deps.Mail.GetThread(ctx, r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}

	analysis, err := h.deps.Analyzer.AnalyzeThread(ctx, thread)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}

	resp := analyzeResponseJSON{
		Analysis: analysisJSON{
			Summary:   analysis.Summary,
			Sentiment: analysis.Sentiment,
			Tone:      analysis.Tone,
			Urgency:   analysis.Urgency,
			KeyPoints: analysis.KeyPoints,
		},
	}

	if drafts, err := h.deps.Replies.Generate(ctx, analysis); err == nil {
		resp.Drafts = drafts
	} else {
		h.deps.Log.Error().Err(err).Msg("draft generation failed")
	}

	if suggestions, err := h.deps.Scheduler.SuggestTimes(ctx, thread.Latest().Body, h.slotOptions(0, 0)); err == nil {
		for _, s := range suggestions {
			resp.Suggestions = append(resp.Suggestions, slotJSON{Start: s.Start, End: s.End})
		}
	} else {
		h.deps.Log.Error().Err(err).Msg("meeting suggestions failed")
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) apiSlots(w http.ResponseWriter, r *http.Request) {
	duration, err := parseDuration(r.URL.Query().Get("duration"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	days, err := parseDaysAhead(r.URL.Query().Get("days"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	opts := h.slotOptions(duration, days)
	busy, err := h.deps.Calendar.BusyIntervals(r.Context(), opts.Now, opts.Now.AddDate(0, 0, opts.DaysAhead))
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err)
		return
	}

	slots := schedule.FindSlots(busy, opts)
	out := make([]slotJSON, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotJSON{Start: s.Start, End: s.End})
	}
	writeJSON(w, http.StatusOK, map[string][]slotJSON{"slots": out})
}

func threadToJSON(t mail.Thread) threadJSON {
	out := threadJSON{
		ID:       t.ID,
		Subject:  t.Subject(),
		Snippet:  t.Snippet,
		Messages: make([]messageJSON, 0, len(t.Messages)),
	}
	for _, m := range t.Messages {
		out.Messages = append(out.Messages, messageJSON{
			ID:      m.ID,
			Subject: m.Subject,
			From:    m.From,
			To:      m.To,
			Date:    m.Date,
			Body:    m.Body,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorJSON{Error: err.Error()})
}
