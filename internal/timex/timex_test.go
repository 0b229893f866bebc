package timex

import (
	"errors"
	"testing"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"2024-05-01",
		"--05-01",
		"XXXX-WXX-3",
		"XXXX-WXX-7",
		"T14",
		"T14:00",
		"T09:30",
		"2024-05-01T14:00",
	}
	for _, timex := range cases {
		p, err := Parse(timex)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", timex, err)
			continue
		}
		if got := p.String(); got != timex {
			t.Errorf("Parse(%q).String() = %q", timex, got)
		}
	}
}

func TestParseComponents(t *testing.T) {
	p, err := Parse("2024-05-01T14:30")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !p.HasYear || p.Year != 2024 {
		t.Errorf("year = %d (has=%v)", p.Year, p.HasYear)
	}
	if !p.HasMonth || p.Month != time.May {
		t.Errorf("month = %v (has=%v)", p.Month, p.HasMonth)
	}
	if !p.HasDayOfMonth || p.DayOfMonth != 1 {
		t.Errorf("day = %d (has=%v)", p.DayOfMonth, p.HasDayOfMonth)
	}
	if !p.HasHour || p.Hour != 14 || !p.HasMinute || p.Minute != 30 {
		t.Errorf("time = %d:%d (hasHour=%v hasMinute=%v)", p.Hour, p.Minute, p.HasHour, p.HasMinute)
	}
}

func TestParseWeekday(t *testing.T) {
	p, err := Parse("XXXX-WXX-3")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !p.HasDayOfWeek || p.DayOfWeek != time.Wednesday {
		t.Errorf("weekday = %v (has=%v), want Wednesday", p.DayOfWeek, p.HasDayOfWeek)
	}
	// ISO 7 is Sunday.
	p, err = Parse("XXXX-WXX-7")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.DayOfWeek != time.Sunday {
		t.Errorf("weekday = %v, want Sunday", p.DayOfWeek)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, timex := range []string{"", "not-a-date", "2024-13-01", "T25", "T14:61", "XXXX-WXX-8"} {
		if _, err := Parse(timex); !errors.Is(err, models.ErrUnparseable) {
			t.Errorf("Parse(%q) error = %v, want ErrUnparseable", timex, err)
		}
	}
}

func TestDefiniteness(t *testing.T) {
	cases := []struct {
		timex        string
		definiteDate bool
		definiteTime bool
	}{
		{"2024-05-01", true, false},
		{"--05-01", false, false},
		{"XXXX-WXX-3", false, false},
		{"T14:00", false, true},
		{"T14", false, false},
		{"2024-05-01T14:00", true, true},
		{"2024-05-01T14", true, false},
	}
	for _, tc := range cases {
		p, err := Parse(tc.timex)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.timex, err)
		}
		if got := p.IsDefiniteDate(); got != tc.definiteDate {
			t.Errorf("IsDefiniteDate(%q) = %v, want %v", tc.timex, got, tc.definiteDate)
		}
		if got := p.IsDefiniteTime(); got != tc.definiteTime {
			t.Errorf("IsDefiniteTime(%q) = %v, want %v", tc.timex, got, tc.definiteTime)
		}
	}
}

func TestType(t *testing.T) {
	cases := map[string]string{
		"2024-05-01":       "date",
		"--05-01":          "date",
		"T14:00":           "time",
		"2024-05-01T14:00": "datetime",
	}
	for timex, want := range cases {
		p, err := Parse(timex)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", timex, err)
		}
		if got := p.Type(); got != want {
			t.Errorf("Type(%q) = %q, want %q", timex, got, want)
		}
	}
}

func TestToNaturalLanguage(t *testing.T) {
	// A fixed Wednesday.
	now := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		timex string
		want  string
	}{
		{"2024-05-01", "today"},
		{"2024-05-02", "tomorrow"},
		{"2024-05-03", "Friday"},
		{"2024-05-20", "May 20, 2024"},
		{"XXXX-WXX-1", "next Monday"},
		{"--05-20", "May 20"},
		{"--04-20", "April 20"}, // already past, rolls to next year
		{"T14:00", "14:00"},
		{"2024-05-02T09:30", "tomorrow at 09:30"},
	}
	for _, tc := range cases {
		p, err := Parse(tc.timex)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.timex, err)
		}
		if got := p.ToNaturalLanguage(now); got != tc.want {
			t.Errorf("ToNaturalLanguage(%q) = %q, want %q", tc.timex, got, tc.want)
		}
	}
}

func TestDateAndTimeStrings(t *testing.T) {
	p, err := Parse("2024-05-01T14:00")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := p.DateString(); got != "2024-05-01" {
		t.Errorf("DateString() = %q", got)
	}
	if got := p.TimeString(); got != "T14:00" {
		t.Errorf("TimeString() = %q", got)
	}
}
