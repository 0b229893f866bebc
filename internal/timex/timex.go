// Package timex implements an ambiguity-preserving textual representation of
// calendar dates, times of day, and durations.
//
// A value is rendered as a compact TIMEX-style string: "2024-05-01" (full
// date), "--05-01" (month and day, year unknown), "XXXX-WXX-3" (weekday
// only), "T14:00" or "T14" (time of day), or a date and time joined by "T".
// Parsing never guesses missing components; ambiguity detection is the whole
// point of keeping them absent.
package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Property holds the known components of a date and/or time expression.
// Absent components are expressed through the Has* flags, never defaulted.
type Property struct {
	Year          int
	HasYear       bool
	Month         time.Month
	HasMonth      bool
	DayOfMonth    int
	HasDayOfMonth bool
	DayOfWeek     time.Weekday
	HasDayOfWeek  bool
	Hour          int
	HasHour       bool
	Minute        int
	HasMinute     bool
}

// Parse decodes a TIMEX-style string into a Property. It accepts date-only,
// time-only, and combined "dateTtime" forms.
func Parse(timex string) (Property, error) {
	var p Property
	s := strings.TrimSpace(timex)
	if s == "" {
		return p, fmt.Errorf("empty timex: %w", models.ErrUnparseable)
	}

	datePart := s
	timePart := ""
	if strings.HasPrefix(s, "T") {
		datePart = ""
		timePart = s[1:]
	} else if i := strings.Index(s, "T"); i >= 0 {
		datePart = s[:i]
		timePart = s[i+1:]
	}

	if datePart != "" {
		if err := p.parseDatePart(datePart); err != nil {
			return Property{}, err
		}
	}
	if timePart != "" {
		if err := p.parseTimePart(timePart); err != nil {
			return Property{}, err
		}
	}
	return p, nil
}

func (p *Property) parseDatePart(s string) error {
	// Weekday form: XXXX-WXX-3 (ISO weekday, 1=Monday).
	if strings.HasPrefix(s, "XXXX-WXX-") {
		n, err := strconv.Atoi(s[len("XXXX-WXX-"):])
		if err != nil || n < 1 || n > 7 {
			return fmt.Errorf("bad weekday timex %q: %w", s, models.ErrUnparseable)
		}
		p.DayOfWeek = time.Weekday(n % 7) // ISO 7 (Sunday) maps to Go 0
		p.HasDayOfWeek = true
		return nil
	}

	// Month/day without a year: --05-01 or XXXX-05-01.
	monthDay := ""
	switch {
	case strings.HasPrefix(s, "--"):
		monthDay = s[2:]
	case strings.HasPrefix(s, "XXXX-"):
		monthDay = s[len("XXXX-"):]
	}
	if monthDay != "" {
		t, err := time.Parse("01-02", monthDay)
		if err != nil {
			return fmt.Errorf("bad month/day timex %q: %w", s, models.ErrUnparseable)
		}
		p.Month, p.HasMonth = t.Month(), true
		p.DayOfMonth, p.HasDayOfMonth = t.Day(), true
		return nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("bad date timex %q: %w", s, models.ErrUnparseable)
	}
	p.Year, p.HasYear = t.Year(), true
	p.Month, p.HasMonth = t.Month(), true
	p.DayOfMonth, p.HasDayOfMonth = t.Day(), true
	return nil
}

func (p *Property) parseTimePart(s string) error {
	hourPart := s
	minutePart := ""
	if i := strings.Index(s, ":"); i >= 0 {
		hourPart = s[:i]
		minutePart = s[i+1:]
		// Ignore a seconds component if one is present.
		if j := strings.Index(minutePart, ":"); j >= 0 {
			minutePart = minutePart[:j]
		}
	}
	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("bad hour in timex %q: %w", s, models.ErrUnparseable)
	}
	p.Hour, p.HasHour = h, true
	if minutePart != "" {
		m, err := strconv.Atoi(minutePart)
		if err != nil || m < 0 || m > 59 {
			return fmt.Errorf("bad minute in timex %q: %w", s, models.ErrUnparseable)
		}
		p.Minute, p.HasMinute = m, true
	}
	return nil
}

// HasDate reports whether any date component is present.
func (p Property) HasDate() bool {
	return p.HasYear || p.HasMonth || p.HasDayOfMonth || p.HasDayOfWeek
}

// HasTime reports whether any time component is present.
func (p Property) HasTime() bool {
	return p.HasHour
}

// IsDefiniteDate reports whether year, month, and day are all present.
// Anything less is ambiguous and must be re-resolved with the user.
func (p Property) IsDefiniteDate() bool {
	return p.HasYear && p.HasMonth && p.HasDayOfMonth
}

// IsDefiniteTime reports whether both hour and minute are present.
func (p Property) IsDefiniteTime() bool {
	return p.HasHour && p.HasMinute
}

// Type classifies the property as "date", "time", or "datetime".
func (p Property) Type() string {
	switch {
	case p.HasDate() && p.HasTime():
		return "datetime"
	case p.HasTime():
		return "time"
	default:
		return "date"
	}
}

// String renders the property back to its TIMEX-style form.
func (p Property) String() string {
	var b strings.Builder
	switch {
	case p.IsDefiniteDate():
		fmt.Fprintf(&b, "%04d-%02d-%02d", p.Year, int(p.Month), p.DayOfMonth)
	case p.HasMonth && p.HasDayOfMonth:
		fmt.Fprintf(&b, "--%02d-%02d", int(p.Month), p.DayOfMonth)
	case p.HasDayOfWeek:
		iso := int(p.DayOfWeek)
		if iso == 0 {
			iso = 7
		}
		fmt.Fprintf(&b, "XXXX-WXX-%d", iso)
	}
	if p.HasHour {
		if p.HasMinute {
			fmt.Fprintf(&b, "T%02d:%02d", p.Hour, p.Minute)
		} else {
			fmt.Fprintf(&b, "T%02d", p.Hour)
		}
	}
	return b.String()
}

// DateString renders only the date components.
func (p Property) DateString() string {
	q := p
	q.HasHour, q.HasMinute = false, false
	return q.String()
}

// TimeString renders only the time components.
func (p Property) TimeString() string {
	q := p
	q.HasYear, q.HasMonth, q.HasDayOfMonth, q.HasDayOfWeek = false, false, false, false
	return q.String()
}

// ToNaturalLanguage renders the property for the user, relative to now.
// Definite dates close to now become "today", "tomorrow", or a weekday name;
// a month/day without a year is rendered as its nearest future occurrence
// (rendering may assume a year, ambiguity detection never does).
func (p Property) ToNaturalLanguage(now time.Time) string {
	var parts []string
	if p.HasDate() {
		parts = append(parts, p.naturalDate(now))
	}
	if p.HasTime() {
		parts = append(parts, p.naturalTime())
	}
	return strings.Join(parts, " at ")
}

func (p Property) naturalDate(now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if p.HasDayOfWeek && !p.HasMonth {
		return "next " + p.DayOfWeek.String()
	}

	if p.HasMonth && p.HasDayOfMonth && !p.HasYear {
		// Nearest future occurrence of the month/day.
		candidate := time.Date(now.Year(), p.Month, p.DayOfMonth, 0, 0, 0, 0, now.Location())
		if candidate.Before(today) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate.Format("January 2")
	}

	date := time.Date(p.Year, p.Month, p.DayOfMonth, 0, 0, 0, 0, now.Location())
	switch days := int(date.Sub(today).Hours() / 24); {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1 && days < 7:
		return date.Weekday().String()
	default:
		return date.Format("January 2, 2006")
	}
}

func (p Property) naturalTime() string {
	minute := 0
	if p.HasMinute {
		minute = p.Minute
	}
	return fmt.Sprintf("%02d:%02d", p.Hour, minute)
}
