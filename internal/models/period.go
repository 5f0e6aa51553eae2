package models

import (
	"regexp"
	"strconv"
	"strings"
)

// Period identifies a half-year sale-speed reporting window, parsed from
// column labels of the form "H1.67" or "H2.67 (12M)". TwelveM marks entries
// measured over a trailing twelve-month window.
type Period struct {
	Year    int
	Half    int
	TwelveM bool
}

var periodPattern = regexp.MustCompile(`(?i)^H([12])\.(\d+)\s*(\(12M\))?$`)

// ParsePeriod parses a period label. ok is false for labels that are not
// period-shaped.
func ParsePeriod(label string) (Period, bool) {
	m := periodPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return Period{}, false
	}
	half, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return Period{Year: year, Half: half, TwelveM: m[3] != ""}, true
}

// After reports whether p is chronologically later than q: year first,
// then half. The 12M marker does not participate in ordering.
func (p Period) After(q Period) bool {
	if p.Year != q.Year {
		return p.Year > q.Year
	}
	return p.Half > q.Half
}

// SamePeriod reports whether two labels refer to the same half-year window,
// ignoring the 12M marker.
func (p Period) SamePeriod(q Period) bool {
	return p.Year == q.Year && p.Half == q.Half
}
