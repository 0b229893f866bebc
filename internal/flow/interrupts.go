package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Action is the interrupt layer's verdict for a turn.
type Action int

const (
	// ActionNone falls through to normal dialog continuation.
	ActionNone Action = iota
	// ActionWaiting ends the turn without touching the active dialog; the
	// same dialog resumes unchanged on the next turn.
	ActionWaiting
	// ActionCancelAll pops every frame, ending the conversation empty.
	ActionCancelAll
)

const helpText = `I can book a meeting room for you.
Say something like "Book a meeting room for tomorrow at 2:00 PM for 1 hr. at New Jersey".
Type "cancel" to start over, or "logout" to sign out.`

// Interrupts recognizes global commands ahead of the dialog stack, so they
// work identically regardless of which step of which nested dialog is
// active.
type Interrupts struct {
	provider       auth.Provider
	connectionName string
}

// NewInterrupts creates the interrupt layer.
func NewInterrupts(provider auth.Provider, connectionName string) *Interrupts {
	return &Interrupts{provider: provider, connectionName: connectionName}
}

// Check runs before the active dialog is resumed or begun on every turn
// that carries a text message. Matching is case-insensitive and exact over
// the trimmed text.
func (i *Interrupts) Check(ctx context.Context, dc *dialog.Context) (Action, error) {
	if dc.Turn.Activity.Type != models.ActivityTypeMessage {
		return ActionNone, nil
	}

	switch strings.ToLower(dc.Turn.Activity.TrimmedText()) {
	case "help", "?":
		slog.Debug("flow.Interrupts.Check: help requested", "conversation", dc.State.ConversationID)
		if err := dc.Turn.SendActivity(ctx, helpText); err != nil {
			return ActionNone, err
		}
		return ActionWaiting, nil

	case "cancel", "quit":
		slog.Info("flow.Interrupts.Check: cancelling all dialogs", "conversation", dc.State.ConversationID, "depth", len(dc.State.Stack))
		if err := dc.Turn.SendActivity(ctx, "Cancelling"); err != nil {
			return ActionNone, err
		}
		if _, err := dc.CancelAllDialogs(ctx); err != nil {
			return ActionNone, err
		}
		return ActionCancelAll, nil

	case "logout":
		user := userID(dc)
		slog.Info("flow.Interrupts.Check: logging out", "conversation", dc.State.ConversationID, "user", user)
		if i.provider != nil {
			if err := i.provider.SignOut(ctx, user, i.connectionName); err != nil {
				slog.Error("flow.Interrupts.Check: sign-out failed", "error", err, "user", user)
			}
		}
		if err := dc.Turn.SendActivity(ctx, "You have been signed out."); err != nil {
			return ActionNone, err
		}
		if _, err := dc.CancelAllDialogs(ctx); err != nil {
			return ActionNone, err
		}
		return ActionCancelAll, nil
	}
	return ActionNone, nil
}

// userID picks the identity the providers key on: the sender when the
// channel supplies one, the conversation otherwise.
func userID(dc *dialog.Context) string {
	if dc.Turn.Activity.From != "" {
		return dc.Turn.Activity.From
	}
	return dc.State.ConversationID
}
