package flow

import (
	"context"
	"fmt"

	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/timex"
)

const (
	datePromptMsg   = "On what date would you like to book the meeting room?"
	dateRepromptMsg = "I'm sorry, for best results, please enter your meeting date including the month, day and year."
)

// DateResolverOptions carries the possibly-ambiguous date into the
// resolver.
type DateResolverOptions struct {
	Date string `json:"date,omitempty"`
}

// DateResolverDialog obtains a definite calendar date: it prompts when no
// date was supplied, re-prompts when the supplied one is ambiguous, and
// passes a definite one straight through.
type DateResolverDialog struct{}

func (d *DateResolverDialog) initialStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	var opts DateResolverOptions
	if err := dialog.DecodeOptions(sc.Options(), &opts); err != nil {
		return dialog.Result{}, fmt.Errorf("undecodable date resolver options: %w", err)
	}

	if opts.Date == "" {
		return sc.Prompt(ctx, datePromptID, dialog.PromptOptions{
			Prompt:      datePromptMsg,
			RetryPrompt: dateRepromptMsg,
		})
	}

	p, err := timex.Parse(opts.Date)
	if err != nil || !p.IsDefiniteDate() {
		// Essentially a reprompt of the data we were given up front.
		return sc.Prompt(ctx, datePromptID, dialog.PromptOptions{Prompt: dateRepromptMsg})
	}
	return sc.Next(ctx, opts.Date)
}

func (d *DateResolverDialog) finalStep(ctx context.Context, sc *dialog.StepContext) (dialog.Result, error) {
	switch v := sc.Result.(type) {
	case []timex.Resolution:
		return sc.EndDialog(ctx, v[0].Timex)
	case string:
		return sc.EndDialog(ctx, v)
	default:
		return sc.EndDialog(ctx, nil)
	}
}
