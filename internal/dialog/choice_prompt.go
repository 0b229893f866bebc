package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ChoicePrompt is a single-choice prompt over a fixed list of labeled
// options. The user may answer with the label or its 1-based number.
type ChoicePrompt struct {
	id string
}

// NewChoicePrompt creates a choice prompt.
func NewChoicePrompt(id string) *ChoicePrompt {
	return &ChoicePrompt{id: id}
}

// ID returns the dialog's registration name.
func (p *ChoicePrompt) ID() string { return p.id }

// Begin sends the prompt text with the numbered choice list and suspends.
func (p *ChoicePrompt) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	opts := promptOptions(dc)
	return sendAndWait(ctx, dc, renderChoices(opts.Prompt, opts.Choices))
}

// Continue matches the turn's text against the choice list, retrying until
// exactly one option matches.
func (p *ChoicePrompt) Continue(ctx context.Context, dc *Context) (Result, error) {
	opts := promptOptions(dc)
	text := dc.Turn.Activity.TrimmedText()

	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(opts.Choices) {
		return dc.EndDialog(ctx, opts.Choices[n-1])
	}
	for _, choice := range opts.Choices {
		if strings.EqualFold(text, choice) {
			return dc.EndDialog(ctx, choice)
		}
	}
	return sendAndWait(ctx, dc, renderChoices(opts.retryText(), opts.Choices))
}

// Resume re-prompts; prompts have no child dialogs to return from.
func (p *ChoicePrompt) Resume(ctx context.Context, dc *Context, result any) (Result, error) {
	return resumePrompt(ctx, dc)
}

func renderChoices(prompt string, choices []string) string {
	var b strings.Builder
	b.WriteString(prompt)
	for i, choice := range choices {
		fmt.Fprintf(&b, "\n %d. %s", i+1, choice)
	}
	return b.String()
}
