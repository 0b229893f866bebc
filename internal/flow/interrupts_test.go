package flow

import (
	"context"
	"testing"

	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/models"
)

// check runs the interrupt layer against the harness state the way the bot
// does before resuming the stack.
func (h *harness) check(t *testing.T, interrupts *Interrupts, activity models.Activity) Action {
	t.Helper()
	dc := h.set.CreateContext(dialog.NewTurnContext(activity, h.sender), h.state)
	action, err := interrupts.Check(context.Background(), dc)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return action
}

func messageActivity(conversation, text string) models.Activity {
	return models.Activity{
		Type:           models.ActivityTypeMessage,
		Text:           text,
		ConversationID: conversation,
		From:           conversation,
	}
}

func TestHelpInterruptLeavesDialogWaiting(t *testing.T) {
	h := newHarness(Config{})
	interrupts := NewInterrupts(nil, "")

	h.turn(t, "hello") // lands on the location prompt
	depth := len(h.state.Stack)
	if depth == 0 {
		t.Fatal("expected active dialog stack")
	}

	action := h.check(t, interrupts, messageActivity(h.state.ConversationID, "help"))
	if action != ActionWaiting {
		t.Fatalf("action = %v, want ActionWaiting", action)
	}
	if !h.sender.contains("I can book a meeting room for you.") {
		t.Fatal("help text not sent")
	}
	if len(h.state.Stack) != depth {
		t.Fatalf("stack depth changed: %d -> %d", depth, len(h.state.Stack))
	}

	// The pending prompt still accepts its answer on the next turn.
	h.turn(t, "New Jersey")
	if !h.sender.contains("Which meeting room do you want to book?") {
		t.Fatalf("flow did not resume: %q", h.sender.last(t))
	}
}

func TestCancelInterruptClearsStack(t *testing.T) {
	h := newHarness(Config{})
	interrupts := NewInterrupts(nil, "")

	h.turn(t, "hello")
	if len(h.state.Stack) == 0 {
		t.Fatal("expected active dialog stack")
	}

	action := h.check(t, interrupts, messageActivity(h.state.ConversationID, "cancel"))
	if action != ActionCancelAll {
		t.Fatalf("action = %v, want ActionCancelAll", action)
	}
	if h.sender.last(t) != "Cancelling" {
		t.Fatalf("last = %q", h.sender.last(t))
	}
	if len(h.state.Stack) != 0 {
		t.Fatalf("stack not cleared: depth %d", len(h.state.Stack))
	}
}

func TestInterruptMatchingIsExactAndCaseInsensitive(t *testing.T) {
	interrupts := NewInterrupts(nil, "")
	tests := []struct {
		text string
		want Action
	}{
		{"help", ActionWaiting},
		{"?", ActionWaiting},
		{"  HELP  ", ActionWaiting},
		{"cancel", ActionCancelAll},
		{"QUIT", ActionCancelAll},
		{"please help me", ActionNone},
		{"cancellation policy", ActionNone},
		{"book a room", ActionNone},
	}
	for _, tc := range tests {
		h := newHarness(Config{})
		h.turn(t, "hello")
		action := h.check(t, interrupts, messageActivity(h.state.ConversationID, tc.text))
		if action != tc.want {
			t.Errorf("Check(%q) = %v, want %v", tc.text, action, tc.want)
		}
	}
}

func TestInterruptIgnoresNonMessageActivities(t *testing.T) {
	h := newHarness(Config{})
	interrupts := NewInterrupts(nil, "")

	activity := models.Activity{
		Type:           models.ActivityTypeConversationUpdate,
		Text:           "cancel",
		ConversationID: h.state.ConversationID,
	}
	if action := h.check(t, interrupts, activity); action != ActionNone {
		t.Fatalf("action = %v, want ActionNone", action)
	}
}

func TestLogoutSignsOutAndCancels(t *testing.T) {
	provider := auth.NewMemoryProvider()
	provider.SetToken("+15550001111", "tok")
	h := newHarness(Config{Provider: provider})
	interrupts := NewInterrupts(provider, "roomgrabber")

	h.turn(t, "hello")
	if !h.sender.contains("You are now logged in.") {
		t.Fatal("expected token login before logout")
	}

	action := h.check(t, interrupts, messageActivity(h.state.ConversationID, "logout"))
	if action != ActionCancelAll {
		t.Fatalf("action = %v, want ActionCancelAll", action)
	}
	if h.sender.last(t) != "You have been signed out." {
		t.Fatalf("last = %q", h.sender.last(t))
	}
	if len(h.state.Stack) != 0 {
		t.Fatalf("stack not cleared: depth %d", len(h.state.Stack))
	}
	if len(provider.SignOuts) != 1 || provider.SignOuts[0] != "+15550001111" {
		t.Fatalf("sign-outs = %v", provider.SignOuts)
	}

	// The token is gone, so the next conversation start waits on login.
	h.turn(t, "hello again")
	if !h.sender.contains("Please login") {
		t.Fatalf("expected login prompt after logout: %q", h.sender.last(t))
	}
}

func TestLogoutWithoutProviderStillCancels(t *testing.T) {
	h := newHarness(Config{})
	interrupts := NewInterrupts(nil, "")

	h.turn(t, "hello")
	action := h.check(t, interrupts, messageActivity(h.state.ConversationID, "logout"))
	if action != ActionCancelAll {
		t.Fatalf("action = %v, want ActionCancelAll", action)
	}
	if h.sender.last(t) != "You have been signed out." {
		t.Fatalf("last = %q", h.sender.last(t))
	}
}
