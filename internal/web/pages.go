package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"inboxpilot/internal/calendar"
	"inboxpilot/internal/mail"
	"inboxpilot/internal/reply"
	"inboxpilot/internal/schedule"
	"inboxpilot/internal/translate"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	data := pageData{Title: "Inbox", Query: query}
	threads, err := h.deps.Mail.ListThreads(r.Context(), query, int64(h.deps.Config.MaxThreads))
	if err != nil {
		h.deps.Log.Error().Err(err).Msg("list threads failed")
		data.Error = "Could not load your inbox: " + err.Error()
	}
	data.Threads = threads
	h.render(w, "index", data)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	h.renderThread(w, r, pageData{})
}

// renderThread shows the thread detail page, layering whatever the
// calling handler put into data (analysis, drafts, banners) on top.
func (h *Handler) renderThread(w http.ResponseWriter, r *http.Request, data pageData) {
	id := r.PathValue("id")

	thread, err := h.deps.Mail.GetThread(r.Context(), id)
	if err != nil {
		h.deps.Log.Error().Err(err).Str("thread", id).Msg("get thread failed")
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}

	data.Title = thread.Subject()
	data.Thread = &thread
	data.Tones = reply.Tones
	data.Languages = translate.SupportedLanguages
	h.render(w, "thread", data)
}

func (h *Handler) analyzeThread(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	thread, err := h.deps.Mail.GetThread(ctx, id)
	if err != nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}

	var data pageData
	analysis, err := h.deps.Analyzer.AnalyzeThread(ctx, thread)
	if err != nil {
		data.Error = "Analysis failed: " + err.Error()
		h.renderThread(w, r, data)
		return
	}
	data.Analysis = &analysis

	if drafts, err := h.deps.Replies.Generate(ctx, analysis); err != nil {
		h.deps.Log.Error().Err(err).Str("thread", id).Msg("draft generation failed")
		data.Error = "Reply drafts unavailable: " + err.Error()
	} else {
		data.Drafts = drafts
	}

	suggestions, err := h.deps.Scheduler.SuggestTimes(ctx, thread.Latest().Body, h.slotOptions(0, 0))
	if err != nil {
		h.deps.Log.Error().Err(err).Str("thread", id).Msg("meeting suggestions failed")
	}
	data.Suggestions = suggestions

	h.renderThread(w, r, data)
}

func (h *Handler) sendReply(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	thread, err := h.deps.Mail.GetThread(ctx, id)
	if err != nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}

	in := mail.ReplyInput{
		ThreadID: id,
		To:       r.PostFormValue("to"),
		Subject:  thread.Subject(),
		Body:     r.PostFormValue("body"),
	}
	if in.To == "" {
		in.To = thread.Latest().From
	}
	if err := in.Validate(); err != nil {
		h.renderThread(w, r, pageData{Error: err.Error()})
		return
	}

	var data pageData
	if r.PostFormValue("action") == "draft" {
		draftID, err := h.deps.Mail.CreateDraft(ctx, in)
		if err != nil {
			data.Error = "Could not create draft: " + err.Error()
		} else {
			data.Message = fmt.Sprintf("Draft %s created.", draftID)
		}
		h.renderThread(w, r, data)
		return
	}

	msgID, err := h.deps.Mail.SendReply(ctx, in)
	switch {
	case err == nil:
		data.Message = fmt.Sprintf("Reply %s sent.", msgID)
	case h.deps.SMTP != nil:
		// Gmail refused the send; fall back to plain SMTP.
		h.deps.Log.Warn().Err(err).Str("thread", id).Msg("gmail send failed, trying smtp")
		if smtpErr := h.deps.SMTP.SendReply(in.To, in.Subject, in.Body); smtpErr != nil {
			data.Error = "Could not send reply: " + smtpErr.Error()
		} else {
			data.Message = "Reply sent via SMTP."
		}
	default:
		data.Error = "Could not send reply: " + err.Error()
	}
	h.renderThread(w, r, data)
}

func (h *Handler) translateThread(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	thread, err := h.deps.Mail.GetThread(ctx, id)
	if err != nil {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}

	target := r.PostFormValue("language")
	if target == "" {
		target = h.deps.Config.DefaultLanguage
	}

	var data pageData
	translated, err := h.deps.Translator.TranslateThread(ctx, thread, target)
	if err != nil {
		data.Error = "Translation failed: " + err.Error()
	} else {
		data.Translation = &translated
	}
	h.renderThread(w, r, data)
}

func (h *Handler) calendarPage(w http.ResponseWriter, r *http.Request) {
	h.renderCalendar(w, r, pageData{})
}

func (h *Handler) renderCalendar(w http.ResponseWriter, r *http.Request, data pageData) {
	events, err := h.deps.Calendar.UpcomingEvents(r.Context(), 15)
	if err != nil {
		h.deps.Log.Error().Err(err).Msg("upcoming events failed")
		if data.Error == "" {
			data.Error = "Could not load your calendar: " + err.Error()
		}
	}

	if editID := r.URL.Query().Get("edit"); editID != "" {
		for i := range events {
			if events[i].ID == editID {
				data.EditEvent = &events[i]
				break
			}
		}
	}

	data.Title = "Calendar"
	data.Events = events
	data.Durations = durationChoices
	h.render(w, "calendar", data)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseEventForm(r)
	if err != nil {
		h.renderCalendar(w, r, pageData{Error: err.Error()})
		return
	}

	if _, err := h.deps.Calendar.CreateEvent(r.Context(), in); err != nil {
		h.renderCalendar(w, r, pageData{Error: "Could not schedule meeting: " + err.Error()})
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	in, err := h.parseEventForm(r)
	if err != nil {
		h.renderCalendar(w, r, pageData{Error: err.Error()})
		return
	}

	if _, err := h.deps.Calendar.UpdateEvent(r.Context(), id, in); err != nil {
		h.renderCalendar(w, r, pageData{Error: "Could not update meeting: " + err.Error()})
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (h *Handler) cancelEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	notify := r.PostFormValue("notify") != "off"

	if err := h.deps.Calendar.CancelEvent(r.Context(), id, notify); err != nil {
		h.renderCalendar(w, r, pageData{Error: "Could not cancel meeting: " + err.Error()})
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (h *Handler) findSlots(w http.ResponseWriter, r *http.Request) {
	duration, err := parseDuration(r.PostFormValue("duration"))
	if err != nil {
		h.renderCalendar(w, r, pageData{Error: err.Error()})
		return
	}
	days, err := parseDaysAhead(r.PostFormValue("days"))
	if err != nil {
		h.renderCalendar(w, r, pageData{Error: err.Error()})
		return
	}

	opts := h.slotOptions(duration, days)
	busy, err := h.deps.Calendar.BusyIntervals(r.Context(), opts.Now, opts.Now.AddDate(0, 0, opts.DaysAhead))
	if err != nil {
		h.renderCalendar(w, r, pageData{Error: "Could not check availability: " + err.Error()})
		return
	}

	data := pageData{Slots: schedule.FindSlots(busy, opts)}
	if len(data.Slots) == 0 {
		data.Message = "No open slots in the selected range."
	}
	h.renderCalendar(w, r, data)
}

// parseEventForm turns the booking form into an EventInput. Attendee
// validation happens in EventInput.Validate on the way out.
func (h *Handler) parseEventForm(r *http.Request) (calendar.EventInput, error) {
	if err := r.ParseForm(); err != nil {
		return calendar.EventInput{}, fmt.Errorf("bad form: %w", err)
	}

	duration, err := parseDuration(r.PostFormValue("duration"))
	if err != nil {
		return calendar.EventInput{}, err
	}

	start, err := time.ParseInLocation("2006-01-02 15:04",
		r.PostFormValue("date")+" "+r.PostFormValue("time"), h.deps.Config.Location())
	if err != nil {
		return calendar.EventInput{}, fmt.Errorf("invalid date or time")
	}

	return calendar.EventInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Location:    r.PostFormValue("location"),
		Start:       start,
		Duration:    duration,
		Attendees:   calendar.ParseAttendees(r.PostFormValue("attendees")),
	}, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil // caller falls back to the configured default
	}
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	for _, choice := range durationChoices {
		if minutes == choice {
			return time.Duration(minutes) * time.Minute, nil
		}
	}
	return 0, fmt.Errorf("duration must be one of %v minutes", durationChoices)
}

func parseDaysAhead(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 || days > 14 {
		return 0, fmt.Errorf("days ahead must be between 1 and 14")
	}
	return days, nil
}
