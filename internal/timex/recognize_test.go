package timex

import (
	"testing"
	"time"
)

var recognizeNow = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

func recognizeTimex(t *testing.T, text string) Resolution {
	t.Helper()
	res := Recognize(text, recognizeNow)
	if len(res) == 0 {
		t.Fatalf("Recognize(%q) found nothing", text)
	}
	return res[0]
}

func TestRecognizeDates(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"today", "2024-05-01"},
		{"tomorrow", "2024-05-02"},
		{"2024-05-20", "2024-05-20"},
		{"5/20/2024", "2024-05-20"},
		{"5/1", "--05-01"}, // no year, stays ambiguous
		{"may 1", "--05-01"},
		{"May 1st, 2024", "2024-05-01"},
		{"1 may 2024", "2024-05-01"},
		{"friday", "XXXX-WXX-5"},
		{"next friday", "XXXX-WXX-5"},
		{"on monday", "XXXX-WXX-1"},
	}
	for _, tc := range cases {
		got := recognizeTimex(t, tc.text)
		if got.Timex != tc.want {
			t.Errorf("Recognize(%q) = %q, want %q", tc.text, got.Timex, tc.want)
		}
		if got.Type != "date" {
			t.Errorf("Recognize(%q) type = %q, want date", tc.text, got.Type)
		}
	}
}

func TestRecognizeTimes(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"2:30 pm", "T14:30"},
		{"2pm", "T14:00"},
		{"12am", "T00:00"},
		{"14:00", "T14:00"},
		{"9:15", "T09:15"},
		{"noon", "T12:00"},
		{"midnight", "T00:00"},
	}
	for _, tc := range cases {
		got := recognizeTimex(t, tc.text)
		if got.Timex != tc.want {
			t.Errorf("Recognize(%q) = %q, want %q", tc.text, got.Timex, tc.want)
		}
		if got.Type != "time" {
			t.Errorf("Recognize(%q) type = %q, want time", tc.text, got.Type)
		}
	}
}

func TestRecognizeDateAndTime(t *testing.T) {
	got := recognizeTimex(t, "tomorrow at 2:00 PM")
	if got.Timex != "2024-05-02T14:00" {
		t.Errorf("Timex = %q, want 2024-05-02T14:00", got.Timex)
	}
	if got.Type != "datetime" {
		t.Errorf("Type = %q, want datetime", got.Type)
	}
	if !got.Property.IsDefiniteDate() || !got.Property.IsDefiniteTime() {
		t.Errorf("expected definite date and time, got %+v", got.Property)
	}
}

func TestRecognizeNothing(t *testing.T) {
	for _, text := range []string{"", "hello there", "9", "the boardroom"} {
		if res := Recognize(text, recognizeNow); len(res) != 0 {
			t.Errorf("Recognize(%q) = %v, want none", text, res)
		}
	}
}
