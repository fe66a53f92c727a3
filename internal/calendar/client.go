package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"inboxpilot/internal/schedule"
)

const calendarID = "primary"

// Reminder overrides applied to every event the assistant books: an
// email a day ahead and a popup half an hour ahead.
const (
	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 30
)

// APIClient implements Client using the real Google Calendar API.
type APIClient struct {
	service  *calendar.Service
	location *time.Location
}

// createCalendarService creates a Calendar API service. Overridden in tests.
var createCalendarService = func(ctx context.Context, opts ...option.ClientOption) (*calendar.Service, error) {
	return calendar.NewService(ctx, opts...)
}

// NewAPIClient creates a real Calendar API client. loc is the zone
// all-day events are expanded in.
func NewAPIClient(ctx context.Context, tokenSource oauth2.TokenSource, loc *time.Location) (*APIClient, error) {
	srv, err := createCalendarService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &APIClient{service: srv, location: loc}, nil
}

func (c *APIClient) UpcomingEvents(ctx context.Context, max int64) ([]Event, error) {
	resp, err := c.service.Events.List(calendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar events.list: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, ok := eventFromAPI(item, c.location)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *APIClient) BusyIntervals(ctx context.Context, from, to time.Time) ([]schedule.Interval, error) {
	resp, err := c.service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar events.list: %w", err)
	}

	intervals := make([]schedule.Interval, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, ok := eventFromAPI(item, c.location)
		if !ok {
			continue
		}
		intervals = append(intervals, schedule.Interval{Start: ev.Start, End: ev.End})
	}
	return intervals, nil
}

func (c *APIClient) CreateEvent(ctx context.Context, in EventInput) (Event, error) {
	if err := in.Validate(); err != nil {
		return Event{}, err
	}

	created, err := c.service.Events.Insert(calendarID, eventToAPI(in)).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("calendar events.insert: %w", err)
	}

	ev, _ := eventFromAPI(created, c.location)
	return ev, nil
}

func (c *APIClient) UpdateEvent(ctx context.Context, id string, in EventInput) (Event, error) {
	if err := in.Validate(); err != nil {
		return Event{}, err
	}

	updated, err := c.service.Events.Update(calendarID, id, eventToAPI(in)).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return Event{}, fmt.Errorf("calendar events.update %s: %w", id, err)
	}

	ev, _ := eventFromAPI(updated, c.location)
	return ev, nil
}

func (c *APIClient) CancelEvent(ctx context.Context, id string, notifyAttendees bool) error {
	sendUpdates := "none"
	if notifyAttendees {
		sendUpdates = "all"
	}

	err := c.service.Events.Delete(calendarID, id).
		SendUpdates(sendUpdates).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar events.delete %s: %w", id, err)
	}
	return nil
}

// eventToAPI builds the API payload for an event the assistant books.
func eventToAPI(in EventInput) *calendar.Event {
	ev := &calendar.Event{
		Summary:     in.Title,
		Description: in.Description,
		Location:    in.Location,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: in.End().Format(time.RFC3339)},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			// UseDefault is false, the zero value, so it has to be
			// forced onto the wire or the API keeps its default.
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, email := range in.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	return ev
}

// eventFromAPI converts an API event. All-day events (date, no
// dateTime) cover the whole local day in loc.
func eventFromAPI(item *calendar.Event, loc *time.Location) (Event, bool) {
	if item == nil || item.Start == nil || item.End == nil {
		return Event{}, false
	}

	ev := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}

	var err error
	switch {
	case item.Start.DateTime != "":
		if ev.Start, err = time.Parse(time.RFC3339, item.Start.DateTime); err != nil {
			return Event{}, false
		}
		if ev.End, err = time.Parse(time.RFC3339, item.End.DateTime); err != nil {
			return Event{}, false
		}
	case item.Start.Date != "":
		ev.AllDay = true
		if ev.Start, err = time.ParseInLocation("2006-01-02", item.Start.Date, loc); err != nil {
			return Event{}, false
		}
		// The API's all-day end date is exclusive already.
		if ev.End, err = time.ParseInLocation("2006-01-02", item.End.Date, loc); err != nil {
			return Event{}, false
		}
	default:
		return Event{}, false
	}

	return ev, true
}
