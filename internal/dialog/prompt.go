package dialog

import (
	"context"
	"log/slog"
)

// PromptOptions configures a single prompt activation. RetryPrompt falls
// back to Prompt when empty. Choices is only consulted by the choice prompt.
type PromptOptions struct {
	Prompt      string   `json:"prompt"`
	RetryPrompt string   `json:"retry_prompt,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

func (o PromptOptions) retryText() string {
	if o.RetryPrompt != "" {
		return o.RetryPrompt
	}
	return o.Prompt
}

// promptOptions decodes the active frame's options back into PromptOptions
// after a persistence round-trip.
func promptOptions(dc *Context) PromptOptions {
	var opts PromptOptions
	if err := DecodeOptions(dc.ActiveFrame().Options, &opts); err != nil {
		slog.Error("dialog.promptOptions: undecodable prompt options", "error", err, "dialogID", dc.ActiveFrame().DialogID)
	}
	return opts
}

// sendAndWait sends the prompt text and suspends the dialog until the next
// turn. Rejection re-enters here with the retry text, indefinitely; callers
// needing a retry limit layer it on top.
func sendAndWait(ctx context.Context, dc *Context, text string) (Result, error) {
	if err := dc.Turn.SendActivity(ctx, text); err != nil {
		return Result{}, err
	}
	return Result{Status: StatusWaiting}, nil
}

// Resume on a prompt happens only if a child dialog was pushed above it,
// which prompts never do; re-prompting is the safe recovery.
func resumePrompt(ctx context.Context, dc *Context) (Result, error) {
	return sendAndWait(ctx, dc, promptOptions(dc).retryText())
}
