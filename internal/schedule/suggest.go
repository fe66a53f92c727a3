package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// How many open slots a meeting-request email gets offered.
const maxSuggestions = 3

// BusySource provides busy intervals for a time range. The calendar
// client satisfies this.
type BusySource interface {
	BusyIntervals(ctx context.Context, from, to time.Time) ([]Interval, error)
}

// Suggestion is a proposed meeting time.
type Suggestion struct {
	Start time.Time
	End   time.Time
}

// Format renders a suggestion the way it is shown in email and UI.
func (s Suggestion) Format() string {
	return fmt.Sprintf("%s to %s",
		s.Start.Format("2006-01-02 3:04 PM"),
		s.End.Format("3:04 PM"))
}

// Scheduler combines meeting-request detection with the slot search.
type Scheduler struct {
	busy BusySource
	log  zerolog.Logger
}

func NewScheduler(busy BusySource, log zerolog.Logger) *Scheduler {
	return &Scheduler{busy: busy, log: log}
}

// SuggestTimes proposes up to three open slots when the email body asks
// for a meeting. A body with no scheduling phrase yields no suggestions
// and no calendar traffic.
func (s *Scheduler) SuggestTimes(ctx context.Context, emailBody string, opts Options) ([]Suggestion, error) {
	if !IsMeetingRequest(emailBody) {
		return nil, nil
	}
	opts = opts.withDefaults()

	from := opts.Now
	to := from.AddDate(0, 0, opts.DaysAhead)
	busy, err := s.busy.BusyIntervals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("suggest times: %w", err)
	}

	opts.Limit = maxSuggestions
	slots := FindSlots(busy, opts)
	s.log.Debug().Int("slots", len(slots)).Msg("meeting suggestions computed")

	suggestions := make([]Suggestion, 0, len(slots))
	for _, slot := range slots {
		suggestions = append(suggestions, Suggestion{Start: slot.Start, End: slot.End})
	}
	return suggestions, nil
}
