package timex

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Resolution is one recognized reading of a free-text date/time expression.
type Resolution struct {
	Timex    string
	Type     string
	Property Property
}

var (
	timePattern    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashPattern   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
	monthDay       = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	dayMonth       = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\.?(?:,?\s+(\d{4}))?$`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdaysByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// Recognize extracts date/time readings from free text, relative to now.
// It returns no resolutions when nothing in the text looks like a date or a
// time; callers treat that as a validation failure and re-prompt.
func Recognize(text string, now time.Time) []Resolution {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return nil
	}

	// "tomorrow at 2pm" style: recognize both halves and merge.
	if date, rest, ok := strings.Cut(s, " at "); ok {
		dres := recognizeOne(strings.TrimSpace(date), now)
		tres := recognizeOne(strings.TrimSpace(rest), now)
		if dres != nil && tres != nil && dres.Property.HasDate() && tres.Property.HasTime() {
			merged := dres.Property
			merged.Hour, merged.HasHour = tres.Property.Hour, tres.Property.HasHour
			merged.Minute, merged.HasMinute = tres.Property.Minute, tres.Property.HasMinute
			return []Resolution{{Timex: merged.String(), Type: merged.Type(), Property: merged}}
		}
	}

	if res := recognizeOne(s, now); res != nil {
		return []Resolution{*res}
	}
	return nil
}

func recognizeOne(s string, now time.Time) *Resolution {
	for _, prefix := range []string{"on ", "next ", "this "} {
		s = strings.TrimPrefix(s, prefix)
	}

	if p, ok := recognizeRelativeDay(s, now); ok {
		return resolutionFor(p)
	}
	if wd, ok := weekdaysByName[s]; ok {
		return resolutionFor(Property{DayOfWeek: wd, HasDayOfWeek: true})
	}
	if p, ok := recognizeCalendarDate(s); ok {
		return resolutionFor(p)
	}
	if p, ok := recognizeClockTime(s); ok {
		return resolutionFor(p)
	}
	return nil
}

func resolutionFor(p Property) *Resolution {
	return &Resolution{Timex: p.String(), Type: p.Type(), Property: p}
}

func recognizeRelativeDay(s string, now time.Time) (Property, bool) {
	var day time.Time
	switch s {
	case "today":
		day = now
	case "tomorrow":
		day = now.AddDate(0, 0, 1)
	default:
		return Property{}, false
	}
	return Property{
		Year: day.Year(), HasYear: true,
		Month: day.Month(), HasMonth: true,
		DayOfMonth: day.Day(), HasDayOfMonth: true,
	}, true
}

func recognizeCalendarDate(s string) (Property, bool) {
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return dateProperty(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), true)
	}
	if m := slashPattern.FindStringSubmatch(s); m != nil {
		month, day := atoi(m[1]), atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return Property{}, false
		}
		if m[3] == "" {
			return dateProperty(0, time.Month(month), day, false)
		}
		return dateProperty(atoi(m[3]), time.Month(month), day, true)
	}
	if m := monthDay.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[m[1]]; ok {
			return dateProperty(atoi(m[3]), month, atoi(m[2]), m[3] != "")
		}
	}
	if m := dayMonth.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[m[2]]; ok {
			return dateProperty(atoi(m[3]), month, atoi(m[1]), m[3] != "")
		}
	}
	return Property{}, false
}

func dateProperty(year int, month time.Month, day int, hasYear bool) (Property, bool) {
	if day < 1 || day > 31 {
		return Property{}, false
	}
	return Property{
		Year: year, HasYear: hasYear,
		Month: month, HasMonth: true,
		DayOfMonth: day, HasDayOfMonth: true,
	}, true
}

func recognizeClockTime(s string) (Property, bool) {
	switch s {
	case "noon":
		return Property{Hour: 12, HasHour: true, HasMinute: true}, true
	case "midnight":
		return Property{Hour: 0, HasHour: true, HasMinute: true}, true
	}
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return Property{}, false
	}
	hour := atoi(m[1])
	minute := 0
	hasMinute := m[2] != ""
	if hasMinute {
		minute = atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
		hasMinute = true
	case "am":
		if hour == 12 {
			hour = 0
		}
		hasMinute = true
	default:
		// A bare number is too ambiguous to call a time; require a colon.
		if m[2] == "" {
			return Property{}, false
		}
	}
	if hour > 23 || minute > 59 {
		return Property{}, false
	}
	return Property{Hour: hour, HasHour: true, Minute: minute, HasMinute: hasMinute}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
