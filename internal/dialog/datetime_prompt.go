package dialog

import (
	"context"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/timex"
)

// DateTimeValidator is a caller-supplied acceptance predicate over the
// recognized date/time resolutions (e.g. "must be a definite date with no
// time component").
type DateTimeValidator func(resolutions []timex.Resolution) bool

// DateTimePrompt recognizes date/time expressions in the user's text and
// applies a validator before accepting. The accepted value passed to the
// invoking step is the resolution slice.
type DateTimePrompt struct {
	id        string
	validator DateTimeValidator
	now       func() time.Time
}

// NewDateTimePrompt creates a datetime prompt. The validator may be nil, in
// which case any recognized value is accepted. Relative expressions like
// "tomorrow" resolve against now; a nil now means the wall clock.
func NewDateTimePrompt(id string, validator DateTimeValidator, now func() time.Time) *DateTimePrompt {
	if now == nil {
		now = time.Now
	}
	return &DateTimePrompt{id: id, validator: validator, now: now}
}

// ID returns the dialog's registration name.
func (p *DateTimePrompt) ID() string { return p.id }

// Begin sends the prompt message and suspends.
func (p *DateTimePrompt) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	return sendAndWait(ctx, dc, promptOptions(dc).Prompt)
}

// Continue recognizes the turn's text, retrying when nothing is recognized
// or the validator rejects the resolutions.
func (p *DateTimePrompt) Continue(ctx context.Context, dc *Context) (Result, error) {
	resolutions := timex.Recognize(dc.Turn.Activity.TrimmedText(), p.now())
	if len(resolutions) == 0 || (p.validator != nil && !p.validator(resolutions)) {
		return sendAndWait(ctx, dc, promptOptions(dc).retryText())
	}
	return dc.EndDialog(ctx, resolutions)
}

// Resume re-prompts; prompts have no child dialogs to return from.
func (p *DateTimePrompt) Resume(ctx context.Context, dc *Context, result any) (Result, error) {
	return resumePrompt(ctx, dc)
}
