package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/timex"
)

// BookingDialog collects the booking fields one step at a time, skipping
// any slot the options record already fills non-ambiguously.
type BookingDialog struct {
	rooms []string
	now   func() time.Time
}

func bookingOptions(sc *dialog.StepContext) (models.BookingDetails, error) {
	details, err := models.DecodeBookingDetails(sc.Options())
	if err != nil {
		return details, fmt.Errorf("undecodable booking options: %w", err)
	}
	return details, nil
}

// locationStep prompts for the location unless it was pre-filled.
func (b *BookingDialog) locationStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if details.Location == "" {
		return sc.Prompt(ctx, textPromptID, dialog.PromptOptions{Prompt: "Which location do you need to book a meeting room?"})
	}
	return sc.Next(ctx, details.Location)
}

// roomStep captures the location answer and prompts for the meeting room
// from the fixed room list unless it was pre-filled.
func (b *BookingDialog) roomStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if location, ok := sc.Result.(string); ok && location != "" {
		details.Location = location
		sc.SetOptions(details)
	}
	if details.MeetingRoom == "" {
		return sc.Prompt(ctx, roomPromptID, dialog.PromptOptions{
			Prompt:      "Which meeting room do you want to book?",
			RetryPrompt: "Please pick one of the listed rooms.",
			Choices:     b.rooms,
		})
	}
	return sc.Next(ctx, details.MeetingRoom)
}

// dateStep captures the room answer, then delegates to the date resolver
// when the date is missing or ambiguous.
func (b *BookingDialog) dateStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if room, ok := sc.Result.(string); ok && room != "" {
		details.MeetingRoom = room
		sc.SetOptions(details)
	}
	if dateAmbiguous(details.MeetingDate) {
		return sc.BeginDialog(ctx, dateResolverID, DateResolverOptions{Date: details.MeetingDate})
	}
	return sc.Next(ctx, details.MeetingDate)
}

// timeStep captures the resolved date, then prompts for a definite time
// when the time is missing or ambiguous.
func (b *BookingDialog) timeStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if date, ok := sc.Result.(string); ok && date != "" {
		details.MeetingDate = date
		sc.SetOptions(details)
	}
	if timeAmbiguous(details.MeetingTime) {
		return sc.Prompt(ctx, timePromptID, dialog.PromptOptions{
			Prompt:      "What time should the meeting room be booked for?",
			RetryPrompt: "I'm sorry, please enter a specific time including hour and minutes, like 2:30 PM.",
		})
	}
	return sc.Next(ctx, details.MeetingTime)
}

// durationStep captures the accepted time and prompts for the duration
// unless it was pre-filled.
func (b *BookingDialog) durationStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if clock := timeFromResult(sc.Result); clock != "" {
		details.MeetingTime = clock
		sc.SetOptions(details)
	}
	if details.Duration == "" && details.DurationSeconds == 0 {
		return sc.Prompt(ctx, textPromptID, dialog.PromptOptions{Prompt: "How long do you need the meeting room for?"})
	}
	return sc.Next(ctx, details.Duration)
}

// confirmStep captures the duration answer, parses it, and asks the user
// to confirm the assembled booking.
func (b *BookingDialog) confirmStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	details, err := bookingOptions(sc)
	if err != nil {
		return dialog.Result{}, err
	}
	if duration, ok := sc.Result.(string); ok && duration != "" {
		details.Duration = duration
	}
	if details.DurationSeconds == 0 {
		if seconds, err := timex.ParseDuration(details.Duration); err == nil {
			details.DurationSeconds = seconds
		}
	}
	sc.SetOptions(details)

	msg := fmt.Sprintf("Please confirm, I have your booking for meeting room %s (%s) on %s at %s for %s.",
		details.MeetingRoom, details.Location,
		naturalDate(details.MeetingDate, b.now()),
		naturalTime(details.MeetingTime),
		humanizedDuration(details))
	return sc.Prompt(ctx, confirmPromptID, dialog.PromptOptions{
		Prompt:      msg,
		RetryPrompt: "Please answer yes or no.",
	})
}

// finalStep ends with the full record on confirmation, and with no result
// otherwise, signalling cancellation to the parent.
func (b *BookingDialog) finalStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	if confirmed, ok := sc.Result.(bool); ok && confirmed {
		details, err := bookingOptions(sc)
		if err != nil {
			return dialog.Result{}, err
		}
		return sc.EndDialog(ctx, details)
	}
	return sc.EndDialog(ctx, nil)
}

// dateAmbiguous reports whether a TIMEX date string is missing or not a
// definite year-month-day.
func dateAmbiguous(timexDate string) bool {
	if timexDate == "" {
		return true
	}
	p, err := timex.Parse(timexDate)
	if err != nil {
		return true
	}
	return !p.IsDefiniteDate()
}

// timeAmbiguous reports whether a TIMEX time string is missing or lacks an
// hour or minute.
func timeAmbiguous(timexTime string) bool {
	if timexTime == "" {
		return true
	}
	p, err := timex.Parse("T" + timexTime)
	if err != nil {
		return true
	}
	return !p.IsDefiniteTime()
}

// timeFromResult normalizes a step result into a TIMEX time-of-day string
// without the leading separator: the time prompt yields resolutions, a
// skipped step passes the string through.
func timeFromResult(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case []timex.Resolution:
		if len(v) == 0 {
			return ""
		}
		return strings.TrimPrefix(v[0].Property.TimeString(), "T")
	default:
		return ""
	}
}
