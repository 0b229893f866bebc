package timex

import (
	"errors"
	"testing"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"1 hr", 3600},
		{"2 hr", 7200},
		{"1 Hr", 3600},
		{"30 min", 1800},
		{"45 Min", 2700},
		{"10 minutes", 600},
		{"1 hr 30 min", 3600}, // first unit found wins
		{"book it for 2 hrs", 7200},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.text)
		if err != nil {
			t.Errorf("ParseDuration(%q) returned error: %v", tc.text, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestParseDurationRejects(t *testing.T) {
	cases := []string{
		"",
		"forever",
		"0 hr",
		"-1 hr",
		"x hr",
		"2hr", // unit token too early in the text to carry a magnitude
	}
	for _, text := range cases {
		if _, err := ParseDuration(text); !errors.Is(err, models.ErrUnparseable) {
			t.Errorf("ParseDuration(%q) error = %v, want ErrUnparseable", text, err)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{45, "45 seconds"},
		{1, "1 second"},
		{60, "1 minute"},
		{1800, "30 minutes"},
		{3600, "1 hour"},
		{5400, "1 hour 30 minutes"},
		{7200, "2 hours"},
	}
	for _, tc := range cases {
		if got := HumanizeDuration(tc.seconds); got != tc.want {
			t.Errorf("HumanizeDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
