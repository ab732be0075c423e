package models

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes a field value for comparison: Unicode lower-case
// with every whitespace rune removed. It is total and idempotent.
func Normalize(value string) string {
	if value == "" {
		return ""
	}

	// cases.Caser keeps state between calls, so one is built per call.
	lowered := cases.Lower(language.Und).String(value)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isSpace matches the whitespace set of the source sheets' regex engine,
// which also treats the byte order mark as blank.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// CalendarKey is a canonical YYYY-MM-DD date key used for equality checks.
// It is not validated against the calendar.
type CalendarKey string

// String returns the key text
func (k CalendarKey) String() string {
	return string(k)
}

// NormalizeDate turns a free-form pickup date into a CalendarKey.
//
// Anything after the first whitespace is dropped, "/" and "-" are both
// accepted as separators, and a four character first segment selects
// year-month-day ordering; otherwise day-month-year is assumed. It returns
// false when the value is empty or has fewer than three segments.
func NormalizeDate(raw string) (CalendarKey, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", false
	}

	parts := strings.Split(strings.ReplaceAll(fields[0], "/", "-"), "-")
	if len(parts) < 3 {
		return "", false
	}

	var year, month, day string
	if utf8.RuneCountInString(parts[0]) == 4 {
		year, month, day = parts[0], parts[1], parts[2]
	} else {
		day, month, year = parts[0], parts[1], parts[2]
	}

	return CalendarKey(year + "-" + padDatePart(month) + "-" + padDatePart(day)), true
}

// ParseCalendarKey normalizes a caller supplied date such as the --date flag
func ParseCalendarKey(value string) (CalendarKey, bool) {
	return NormalizeDate(value)
}

func padDatePart(part string) string {
	if part == "" {
		return "00"
	}
	if n := utf8.RuneCountInString(part); n < 2 {
		return strings.Repeat("0", 2-n) + part
	}
	return part
}
