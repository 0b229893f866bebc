package timex

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// durationUnits is scanned in order; the first token found in the text wins.
// Hour variants come before minute variants, so "1 hr 30 min" resolves as
// one hour.
var durationUnits = []struct {
	token   string
	seconds int
}{
	{"hr", 3600},
	{"Hr", 3600},
	{"min", 60},
	{"Min", 60},
}

// ParseDuration converts free-text like "1 hr" or "30 min" to seconds.
// A unit token at text index 0 or 1 counts as not found, which guards
// against an empty magnitude; the preceding magnitude must be a positive
// integer.
func ParseDuration(text string) (int, error) {
	for _, unit := range durationUnits {
		idx := strings.Index(text, unit.token)
		if idx <= 1 {
			continue
		}
		magnitude := strings.TrimSpace(text[:idx])
		if i := strings.LastIndexAny(magnitude, " \t"); i >= 0 {
			magnitude = magnitude[i+1:]
		}
		n, err := strconv.Atoi(magnitude)
		if err != nil || n <= 0 {
			slog.Debug("timex.ParseDuration: bad magnitude before unit", "text", text, "unit", unit.token, "magnitude", magnitude)
			return 0, fmt.Errorf("bad duration magnitude %q: %w", magnitude, models.ErrUnparseable)
		}
		return n * unit.seconds, nil
	}
	slog.Debug("timex.ParseDuration: no unit token found", "text", text)
	return 0, fmt.Errorf("no duration unit in %q: %w", text, models.ErrUnparseable)
}

// HumanizeDuration renders a second count for the user ("1 hour 30 minutes").
func HumanizeDuration(seconds int) string {
	if seconds < 60 {
		return plural(seconds, "second")
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
