package schedule

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Phrases that signal someone is asking to meet.
var meetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)schedule.*meeting`),
	regexp.MustCompile(`(?i)set up.*call`),
	regexp.MustCompile(`(?i)book.*time`),
	regexp.MustCompile(`(?i)find.*slot`),
	regexp.MustCompile(`(?i)available.*time`),
}

var (
	datePattern = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)
	timePattern = regexp.MustCompile(`\b\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)?\b`)
)

// MeetingRequest is one matched scheduling phrase plus any explicit
// date and time mentions found alongside it.
type MeetingRequest struct {
	Pattern string
	Dates   []string
	Times   []string
}

// IsMeetingRequest reports whether the body contains any scheduling phrase.
func IsMeetingRequest(body string) bool {
	for _, p := range meetingPatterns {
		if p.MatchString(body) {
			return true
		}
	}
	return false
}

// DetectMeetingRequests finds scheduling phrases in an email body. Each
// matched pattern yields one request carrying the body's date and time
// mentions.
func DetectMeetingRequests(body string) []MeetingRequest {
	var requests []MeetingRequest
	for _, p := range meetingPatterns {
		if !p.MatchString(body) {
			continue
		}
		requests = append(requests, MeetingRequest{
			Pattern: p.String(),
			Dates:   datePattern.FindAllString(body, -1),
			Times:   timePattern.FindAllString(body, -1),
		})
	}
	return requests
}

// ResolveMentions turns a request's textual date/time mentions into
// concrete times in loc. Each parseable date is combined with the first
// parseable clock time; unparseable or past mentions are dropped. The
// result is sorted ascending.
func ResolveMentions(req MeetingRequest, now time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}

	clock, hasClock := parseClock(firstParseable(req.Times))

	var out []time.Time
	for _, mention := range req.Dates {
		t, err := dateparse.ParseIn(mention, loc)
		if err != nil {
			continue
		}
		if hasClock {
			t = time.Date(t.Year(), t.Month(), t.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		}
		if t.After(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func firstParseable(times []string) string {
	for _, t := range times {
		if _, ok := parseClock(t); ok {
			return t
		}
	}
	return ""
}

// parseClock accepts "15:04" and "3:04 PM" style mentions.
func parseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
