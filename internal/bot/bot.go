// Package bot routes inbound activities through the dialog stack.
//
// One Bot instance serves all conversations. A turn loads the conversation
// state from the store, runs interrupt detection and dialog continuation,
// and writes the state back exactly once. Callers must serialize turns per
// conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"

	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/flow"
	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/store"
)

const welcomeText = "Welcome to RoomGrabberBot. Type anything to get logged in. Type 'logout' to sign-out."

// recoveryText is sent when a persisted stack references an unknown dialog.
const recoveryText = "Sorry, something went wrong. Let's start over."

// Bot dispatches activities for all conversations.
type Bot struct {
	store      store.Store
	sender     dialog.Sender
	dialogs    *dialog.Set
	interrupts *flow.Interrupts
}

// New creates a Bot with the dialog set and interrupt layer built from cfg.
func New(st store.Store, sender dialog.Sender, cfg flow.Config) *Bot {
	return &Bot{
		store:      st,
		sender:     sender,
		dialogs:    flow.NewSet(cfg),
		interrupts: flow.NewInterrupts(cfg.Provider, cfg.ConnectionName),
	}
}

// ProcessActivity runs one turn for the activity's conversation.
func (b *Bot) ProcessActivity(ctx context.Context, activity models.Activity) error {
	if activity.ConversationID == "" {
		return models.ErrEmptyRecipient
	}

	switch activity.Type {
	case models.ActivityTypeConversationUpdate:
		return b.welcome(ctx, activity)
	case models.ActivityTypeMessage, models.ActivityTypeEvent:
		return b.runTurn(ctx, activity)
	default:
		slog.Debug("Bot.ProcessActivity: ignoring activity type", "type", activity.Type, "conversation_id", activity.ConversationID)
		return nil
	}
}

// welcome greets a conversation that has no dialog state yet. Repeated
// conversation updates for a known conversation stay silent.
func (b *Bot) welcome(ctx context.Context, activity models.Activity) error {
	state, err := b.store.GetConversationState(activity.ConversationID)
	if err != nil {
		return fmt.Errorf("Bot.welcome: failed to load state: %w", err)
	}
	if state != nil {
		return nil
	}
	turn := dialog.NewTurnContext(activity, b.sender)
	if err := turn.SendActivity(ctx, welcomeText); err != nil {
		return err
	}
	// Persist an empty state so the greeting happens once.
	return b.store.SaveConversationState(models.ConversationState{ConversationID: activity.ConversationID})
}

// runTurn executes the interrupt check and dialog continuation for one
// inbound activity, then saves the resulting stack.
//
// Channels deliver at least once, so a turn whose key matches the persisted
// LastTurn has already been processed and is dropped before it can resend
// replies or advance the stack again.
func (b *Bot) runTurn(ctx context.Context, activity models.Activity) error {
	state, err := b.store.GetConversationState(activity.ConversationID)
	if err != nil {
		return fmt.Errorf("Bot.runTurn: failed to load state: %w", err)
	}
	if state == nil {
		state = &models.ConversationState{ConversationID: activity.ConversationID}
	}

	key := turnKey(activity)
	if state.LastTurn == key {
		slog.Info("Bot.runTurn: dropping redelivered turn", "conversation_id", activity.ConversationID, "turn_key", key)
		return nil
	}
	state.LastTurn = key

	turn := dialog.NewTurnContext(activity, b.sender)
	dc := b.dialogs.CreateContext(turn, state)

	action, err := b.interrupts.Check(ctx, dc)
	if err != nil {
		slog.Warn("Bot.runTurn: interrupt handling failed", "error", err, "conversation_id", activity.ConversationID)
	}
	if action == flow.ActionNone {
		if err := b.continueOrBegin(ctx, dc); err != nil {
			return err
		}
	}

	if err := b.store.SaveConversationState(*state); err != nil {
		return fmt.Errorf("Bot.runTurn: failed to save state: %w", err)
	}
	return nil
}

// turnKey fingerprints one delivery. Channels stamp each activity with its
// original send time, so a retry of the same message hashes to the same key
// while the user repeating the same text later does not.
func turnKey(activity models.Activity) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d", activity.Type, activity.From, activity.Text, activity.Timestamp.UnixNano())
	return strconv.FormatUint(h.Sum64(), 16)
}

// continueOrBegin resumes the active dialog, starting the root flow when the
// stack is empty. A corrupt stack is cleared and reported to the user; the
// turn itself does not fail.
func (b *Bot) continueOrBegin(ctx context.Context, dc *dialog.Context) error {
	result, err := dc.ContinueDialog(ctx)
	if err != nil {
		if errors.Is(err, models.ErrStackCorrupt) {
			slog.Error("Bot.continueOrBegin: clearing corrupt dialog stack", "conversation_id", dc.Turn.Activity.ConversationID, "error", err)
			return dc.Turn.SendActivity(ctx, recoveryText)
		}
		return err
	}
	if result.Status == dialog.StatusEmpty {
		if _, err := dc.BeginDialog(ctx, flow.RootDialogID, nil); err != nil {
			return err
		}
	}
	return nil
}
