package dialog

import (
	"context"
	"strings"
)

var (
	affirmatives = []string{"yes", "y", "yeah", "yep", "sure", "ok", "okay", "confirm", "true"}
	negatives    = []string{"no", "n", "nope", "nah", "cancel", "false"}
)

// ConfirmPrompt is a single-turn yes/no prompt that recognizes common
// affirmative and negative phrasings.
type ConfirmPrompt struct {
	id string
}

// NewConfirmPrompt creates a confirm prompt.
func NewConfirmPrompt(id string) *ConfirmPrompt {
	return &ConfirmPrompt{id: id}
}

// ID returns the dialog's registration name.
func (p *ConfirmPrompt) ID() string { return p.id }

// Begin sends the prompt message and suspends.
func (p *ConfirmPrompt) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	return sendAndWait(ctx, dc, promptOptions(dc).Prompt)
}

// Continue recognizes yes/no phrasing, retrying until one matches.
func (p *ConfirmPrompt) Continue(ctx context.Context, dc *Context) (Result, error) {
	text := strings.ToLower(dc.Turn.Activity.TrimmedText())
	for _, word := range affirmatives {
		if text == word {
			return dc.EndDialog(ctx, true)
		}
	}
	for _, word := range negatives {
		if text == word {
			return dc.EndDialog(ctx, false)
		}
	}
	return sendAndWait(ctx, dc, promptOptions(dc).retryText())
}

// Resume re-prompts; prompts have no child dialogs to return from.
func (p *ConfirmPrompt) Resume(ctx context.Context, dc *Context, result any) (Result, error) {
	return resumePrompt(ctx, dc)
}
