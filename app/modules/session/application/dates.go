package sessionservice

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Clock lets tests pin "now" for natural-language date parsing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock with the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// newDateParser builds the natural-language parser once; when rule sets
// are safe to reuse across goroutines.
func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseSessionDate accepts RFC 3339, a plain date, or natural language
// ("yesterday", "last friday"). Returns ErrBadDate when nothing matches.
func parseSessionDate(parser *when.Parser, input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		// Sessions default to being recorded the day they happen.
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	r, err := parser.Parse(input, now)
	if err != nil || r == nil {
		return time.Time{}, ErrBadDate
	}
	return r.Time, nil
}
