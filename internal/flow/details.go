package flow

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/recognizer"
	"github.com/roomgrabber/roomgrabber/internal/timex"
)

// DetailsFromRecognition builds a BookingDetails draft from a recognizer
// result. Only the booking intent produces a draft; a datetime entity is
// split into its date and time halves on the TIMEX separator, and a
// duration entity is taken as seconds when it is a bare integer and parsed
// as duration text otherwise.
func DetailsFromRecognition(result recognizer.Result) models.BookingDetails {
	var details models.BookingDetails
	if result.TopIntent != recognizer.IntentBookMeetingRoom {
		slog.Debug("flow.DetailsFromRecognition: not a booking intent", "topIntent", result.TopIntent)
		return details
	}

	details.Location = result.EntityValue(recognizer.EntityTypeLocation)

	if dt := result.EntityValue(recognizer.EntityTypeDatetime); dt != "" {
		date, clock, _ := strings.Cut(dt, "T")
		details.MeetingDate = date
		details.MeetingTime = clock
	}

	if dur := result.EntityValue(recognizer.EntityTypeDuration); dur != "" {
		details.Duration = dur
		if n, err := strconv.Atoi(dur); err == nil && n > 0 {
			details.DurationSeconds = n
		} else if seconds, err := timex.ParseDuration(dur); err == nil {
			details.DurationSeconds = seconds
		}
	}
	return details
}

// naturalDate renders a TIMEX date for the user, keeping the raw string
// when it cannot be rendered.
func naturalDate(timexDate string, now time.Time) string {
	p, err := timex.Parse(timexDate)
	if err != nil {
		return timexDate
	}
	return p.ToNaturalLanguage(now)
}

// naturalTime renders a TIMEX time of day ("14:00" without the leading
// separator), keeping the raw string when it cannot be rendered.
func naturalTime(timexTime string) string {
	p, err := timex.Parse("T" + timexTime)
	if err != nil {
		return timexTime
	}
	return p.ToNaturalLanguage(time.Time{})
}
