package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Sender delivers outbound messages for a conversation.
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// TurnContext carries one inbound activity and the capability to reply to
// its conversation. It is transient and never persisted.
type TurnContext struct {
	Activity models.Activity
	sender   Sender
}

// NewTurnContext wraps an activity and a sender for one turn.
func NewTurnContext(activity models.Activity, sender Sender) *TurnContext {
	return &TurnContext{Activity: activity, sender: sender}
}

// SendActivity sends a text reply to the turn's conversation.
func (tc *TurnContext) SendActivity(ctx context.Context, text string) error {
	return tc.sender.SendMessage(ctx, tc.Activity.ConversationID, text)
}

// Context drives one conversation's dialog stack for one turn.
type Context struct {
	set   *Set
	Turn  *TurnContext
	State *models.ConversationState
}

// CreateContext binds the set to a turn and the conversation's persisted
// state.
func (s *Set) CreateContext(turn *TurnContext, state *models.ConversationState) *Context {
	return &Context{set: s, Turn: turn, State: state}
}

// ActiveFrame returns the top-of-stack frame, or nil when the stack is empty.
func (dc *Context) ActiveFrame() *models.Frame {
	if len(dc.State.Stack) == 0 {
		return nil
	}
	return &dc.State.Stack[len(dc.State.Stack)-1]
}

// BeginDialog pushes a new frame for the named dialog and starts it.
func (dc *Context) BeginDialog(ctx context.Context, dialogID string, options any) (Result, error) {
	d, ok := dc.set.Find(dialogID)
	if !ok {
		return Result{}, fmt.Errorf("begin dialog %q: %w", dialogID, models.ErrStackCorrupt)
	}
	slog.Debug("dialog.Context.BeginDialog: pushing frame", "dialogID", dialogID, "conversation", dc.State.ConversationID, "depth", len(dc.State.Stack))
	dc.State.Stack = append(dc.State.Stack, models.Frame{
		DialogID: dialogID,
		Values:   make(map[string]any),
		Options:  options,
	})
	return d.Begin(ctx, dc, options)
}

// ContinueDialog routes the inbound turn to the top-of-stack dialog. An
// empty stack reports StatusEmpty so the caller can begin the root dialog.
// A frame whose dialog id is unknown indicates corrupt persisted state: the
// stack is cleared and the turn aborted.
func (dc *Context) ContinueDialog(ctx context.Context) (Result, error) {
	frame := dc.ActiveFrame()
	if frame == nil {
		return Result{Status: StatusEmpty}, nil
	}
	d, ok := dc.set.Find(frame.DialogID)
	if !ok {
		slog.Error("dialog.Context.ContinueDialog: unknown dialog in persisted stack, clearing", "dialogID", frame.DialogID, "conversation", dc.State.ConversationID)
		dc.State.Stack = nil
		return Result{}, fmt.Errorf("continue dialog %q: %w", frame.DialogID, models.ErrStackCorrupt)
	}
	slog.Debug("dialog.Context.ContinueDialog: resuming top of stack", "dialogID", frame.DialogID, "conversation", dc.State.ConversationID, "stepIndex", frame.StepIndex)
	return d.Continue(ctx, dc)
}

// EndDialog pops exactly one frame and resumes the parent with the ended
// dialog's result. When the stack empties it reports StatusComplete to the
// caller, who owns any application-level effect.
func (dc *Context) EndDialog(ctx context.Context, result any) (Result, error) {
	frame := dc.ActiveFrame()
	if frame == nil {
		return Result{Status: StatusComplete, Value: result}, nil
	}
	slog.Debug("dialog.Context.EndDialog: popping frame", "dialogID", frame.DialogID, "conversation", dc.State.ConversationID)
	dc.State.Stack = dc.State.Stack[:len(dc.State.Stack)-1]

	parent := dc.ActiveFrame()
	if parent == nil {
		return Result{Status: StatusComplete, Value: result}, nil
	}
	d, ok := dc.set.Find(parent.DialogID)
	if !ok {
		dc.State.Stack = nil
		return Result{}, fmt.Errorf("resume dialog %q: %w", parent.DialogID, models.ErrStackCorrupt)
	}
	return d.Resume(ctx, dc, result)
}

// CancelAllDialogs pops every frame, ending the conversation in the empty
// state.
func (dc *Context) CancelAllDialogs(ctx context.Context) (Result, error) {
	slog.Debug("dialog.Context.CancelAllDialogs: clearing stack", "conversation", dc.State.ConversationID, "depth", len(dc.State.Stack))
	dc.State.Stack = nil
	return Result{Status: StatusCancelled}, nil
}
