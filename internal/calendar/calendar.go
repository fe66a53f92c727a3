// Package calendar wraps Google Calendar behind a small client
// interface for booking and availability lookups.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"inboxpilot/internal/schedule"
)

// Event is a calendar event as the assistant sees it.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Attendees   []string
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	Duration    time.Duration
	Attendees   []string
}

// Validate checks the input before it goes to the API.
func (in EventInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if in.Start.IsZero() {
		errs = append(errs, errors.New("start time is required"))
	}
	if in.Duration <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	for _, a := range in.Attendees {
		if _, err := mail.ParseAddress(a); err != nil {
			errs = append(errs, fmt.Errorf("invalid attendee address %q", a))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid event: %w", errors.Join(errs...))
	}
	return nil
}

// End is the event's end time.
func (in EventInput) End() time.Time {
	return in.Start.Add(in.Duration)
}

// ParseAttendees splits a comma-separated address list, dropping empty
// entries. Validation happens in EventInput.Validate.
func ParseAttendees(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Client is the calendar surface the assistant uses.
type Client interface {
	UpcomingEvents(ctx context.Context, max int64) ([]Event, error)
	BusyIntervals(ctx context.Context, from, to time.Time) ([]schedule.Interval, error)
	CreateEvent(ctx context.Context, in EventInput) (Event, error)
	UpdateEvent(ctx context.Context, id string, in EventInput) (Event, error)
	CancelEvent(ctx context.Context, id string, notifyAttendees bool) error
}
