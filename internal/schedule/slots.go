// Package schedule detects meeting requests in email text and finds
// open calendar slots to satisfy them.
package schedule

import "time"

// Interval is a half-open busy window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && end.After(iv.Start)
}

// Slot is an open window a meeting could be booked into.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Options controls the slot search.
type Options struct {
	Now       time.Time      // search starts strictly after this instant
	Location  *time.Location // business hours are wall-clock in this zone
	Duration  time.Duration  // meeting length
	DaysAhead int            // how many calendar days to sweep
	DayStart  int            // business day start hour, inclusive
	DayEnd    int            // business day end hour, exclusive
	Step      time.Duration  // candidate grid, default 30m
	Limit     int            // max slots returned, 0 = unlimited
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Step <= 0 {
		o.Step = 30 * time.Minute
	}
	return o
}

// FindSlots sweeps business hours over the next opts.DaysAhead days and
// returns every open window of opts.Duration, ordered by start time.
// Candidates land on the opts.Step grid anchored at each day's start;
// only weekdays are considered, only starts strictly after opts.Now
// qualify, and a candidate is open when it overlaps no busy interval.
func FindSlots(busy []Interval, opts Options) []Slot {
	opts = opts.withDefaults()
	if opts.Duration <= 0 || opts.DaysAhead <= 0 || opts.DayStart >= opts.DayEnd {
		return nil
	}

	now := opts.Now.In(opts.Location)

	var slots []Slot
	for day := 0; day < opts.DaysAhead; day++ {
		// time.Date normalizes the day offset, which keeps wall-clock
		// hours correct across DST transitions.
		windowStart := time.Date(now.Year(), now.Month(), now.Day()+day,
			opts.DayStart, 0, 0, 0, opts.Location)
		windowEnd := time.Date(now.Year(), now.Month(), now.Day()+day,
			opts.DayEnd, 0, 0, 0, opts.Location)

		switch windowStart.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}

		for cur := windowStart; !cur.Add(opts.Duration).After(windowEnd); cur = cur.Add(opts.Step) {
			if !cur.After(opts.Now) {
				continue
			}
			end := cur.Add(opts.Duration)
			if overlapsAny(busy, cur, end) {
				continue
			}
			slots = append(slots, Slot{Start: cur, End: end})
			if opts.Limit > 0 && len(slots) == opts.Limit {
				return slots
			}
		}
	}
	return slots
}

func overlapsAny(busy []Interval, start, end time.Time) bool {
	for _, iv := range busy {
		if iv.Overlaps(start, end) {
			return true
		}
	}
	return false
}
