package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/timex"
)

const commandValueKey = "command"

const introPrompt = `What can I help you with today?
Say something like "Book a meeting room for tomorrow at 2:00 PM for 1 hr. at New Jersey"`

// MainDialog is the root flow: login, free-text command, NLU pre-fill,
// delegation to the booking sub-flow, and the closing confirmation.
type MainDialog struct {
	cfg Config
}

// promptStep acquires the auth token before anything else.
func (m *MainDialog) promptStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	return sc.BeginDialog(ctx, loginPromptID, nil)
}

// introStep reports the login outcome and prompts for a booking command.
func (m *MainDialog) introStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	token, _ := sc.Result.(string)
	if token == "" {
		if err := sc.Context().SendActivity(ctx, "Login was not successful please try again."); err != nil {
			return dialog.Result{}, err
		}
		return sc.EndDialog(ctx, nil)
	}

	if err := sc.Context().SendActivity(ctx, "You are now logged in."); err != nil {
		return dialog.Result{}, err
	}
	if m.cfg.Recognizer == nil {
		if err := sc.Context().SendActivity(ctx, "NOTE: language understanding is not configured. I will ask for each booking detail in turn."); err != nil {
			return dialog.Result{}, err
		}
		return sc.Next(ctx, nil)
	}
	return sc.Prompt(ctx, textPromptID, dialog.PromptOptions{Prompt: introPrompt})
}

// commandStep stores the user's command and re-acquires the token, since
// any amount of time may have passed while the user typed.
func (m *MainDialog) commandStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	if command, ok := sc.Result.(string); ok {
		sc.Values()[commandValueKey] = command
	}
	return sc.BeginDialog(ctx, loginPromptID, nil)
}

// actStep runs the recognizer over the stored command and delegates to the
// booking sub-flow with whatever details were extracted. A recognizer
// failure degrades to an empty draft; every slot is then filled manually.
func (m *MainDialog) actStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	var details models.BookingDetails
	if m.cfg.Recognizer != nil {
		command, _ := sc.Values()[commandValueKey].(string)
		result, err := m.cfg.Recognizer.Recognize(ctx, command)
		if err != nil {
			slog.Warn("flow.MainDialog.actStep: recognizer unavailable, continuing without pre-fill", "error", err)
		} else {
			details = DetailsFromRecognition(result)
		}
	}
	slog.Debug("flow.MainDialog.actStep: delegating to booking flow",
		"location_set", details.Location != "", "date_set", details.MeetingDate != "", "time_set", details.MeetingTime != "", "duration_set", details.Duration != "" || details.DurationSeconds > 0)
	return sc.BeginDialog(ctx, bookingDialogID, details)
}

// finalStep renders the booking confirmation, or thanks the user when the
// sub-flow was cancelled.
func (m *MainDialog) finalStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	if sc.Result == nil {
		if err := sc.Context().SendActivity(ctx, "Thank you."); err != nil {
			return dialog.Result{}, err
		}
		return sc.EndDialog(ctx, nil)
	}

	details, err := models.DecodeBookingDetails(sc.Result)
	if err != nil {
		return dialog.Result{}, fmt.Errorf("undecodable booking result: %w", err)
	}
	msg := fmt.Sprintf("I have %s at %s booked, for %s at %s for %s.",
		details.MeetingRoom, details.Location,
		naturalDate(details.MeetingDate, m.cfg.Now()),
		naturalTime(details.MeetingTime),
		humanizedDuration(details))
	if err := sc.Context().SendActivity(ctx, msg); err != nil {
		return dialog.Result{}, err
	}
	return sc.EndDialog(ctx, details)
}

// humanizedDuration renders the parsed duration, keeping the raw text when
// parsing failed earlier.
func humanizedDuration(details models.BookingDetails) string {
	if details.DurationSeconds > 0 {
		return timex.HumanizeDuration(details.DurationSeconds)
	}
	return details.Duration
}
