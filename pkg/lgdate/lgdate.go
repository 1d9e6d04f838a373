// Package lgdate formats and parses the calendar dates stored in the
// task table.
package lgdate

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the persisted date form, e.g. 05-Mar-2025.
const Layout = "02-Jan-2006"

// accepted lists the layouts Parse understands, in order of preference.
// The slash form and ISO dates appear in tables written by older tooling.
var accepted = []string{
	Layout,
	"02/Jan/2006",
	"2006-01-02",
	"2/Jan/2006",
	"2-Jan-2006",
}

// Clock returns the current instant.
type Clock func() time.Time

// Format renders t as a calendar date in loc.
func Format(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}

// Today renders the current date in loc using clock.
func Today(clock Clock, loc *time.Location) string {
	if clock == nil {
		clock = time.Now
	}
	return Format(clock(), loc)
}

// Parse reads a date in any accepted layout.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range accepted {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Normalize rewrites s into Layout. Blank and unparseable values are
// returned trimmed but otherwise untouched.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return t.Format(Layout)
}
