// Package countdown computes how many whole days have passed since a
// remembered date.
package countdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/markusmobius/go-dateparser"

	rberrors "ribbon/internal/errors"
)

// RememberLayout is the human format remembered dates are written in,
// e.g. "2014. 4. 16".
const RememberLayout = "2006. 1. 2"

// ErrInvalidDate is returned when a remembered date cannot be parsed.
var ErrInvalidDate = rberrors.New(rberrors.CodeInvalidDate, "invalid remembered date", nil)

// fallbackLayouts are tried after RememberLayout and before natural language parsing.
var fallbackLayouts = []string{
	"2006.1.2",
	"2006-01-02",
	"2006/1/2",
	"2006년 1월 2일",
}

const day = 24 * time.Hour

// ParseDate parses s in loc. The fixed layout is tried first, then a few
// numeric variants, then go-dateparser for anything written in words.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDate)
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(RememberLayout, s, loc); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: time.Now().In(loc),
	}
	result, err := dateparser.Parse(cfg, s)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t := result.Time.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// DaysBetween returns the absolute number of whole days between a and b,
// rounded down.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(d / day)
}

// Clock returns the current time.
type Clock func() time.Time

// Counter counts days since a remembered date.
type Counter struct {
	Remembered time.Time
	Clock      Clock
}

// NewCounter parses remembered in loc and returns a Counter using the
// system clock.
func NewCounter(remembered string, loc *time.Location) (Counter, error) {
	t, err := ParseDate(remembered, loc)
	if err != nil {
		return Counter{}, err
	}
	return Counter{Remembered: t, Clock: time.Now}, nil
}

// Days returns the whole days elapsed between the remembered date and now.
func (c Counter) Days() int {
	now := time.Now
	if c.Clock != nil {
		now = c.Clock
	}
	return DaysBetween(c.Remembered, now())
}

// FormatDays renders n with thousands separators behind a plus sign,
// e.g. FormatDays(3653, "일") == "+ 3,653일".
func FormatDays(n int, suffix string) string {
	return "+ " + humanize.Comma(int64(n)) + suffix
}
