package dialog

import "context"

// TextValidator accepts or rejects a recognized text value. Rejection
// triggers a retry prompt.
type TextValidator func(value string) bool

// TextPrompt is a single-turn free-text prompt: any non-empty text is
// accepted unless a validator says otherwise.
type TextPrompt struct {
	id        string
	validator TextValidator
}

// NewTextPrompt creates a text prompt. The validator may be nil.
func NewTextPrompt(id string, validator TextValidator) *TextPrompt {
	return &TextPrompt{id: id, validator: validator}
}

// ID returns the dialog's registration name.
func (p *TextPrompt) ID() string { return p.id }

// Begin sends the prompt message and suspends.
func (p *TextPrompt) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	return sendAndWait(ctx, dc, promptOptions(dc).Prompt)
}

// Continue validates the turn's text, retrying on rejection and ending with
// the accepted value otherwise.
func (p *TextPrompt) Continue(ctx context.Context, dc *Context) (Result, error) {
	text := dc.Turn.Activity.TrimmedText()
	if text == "" || (p.validator != nil && !p.validator(text)) {
		return sendAndWait(ctx, dc, promptOptions(dc).retryText())
	}
	return dc.EndDialog(ctx, text)
}

// Resume re-prompts; prompts have no child dialogs to return from.
func (p *TextPrompt) Resume(ctx context.Context, dc *Context, result any) (Result, error) {
	return resumePrompt(ctx, dc)
}
