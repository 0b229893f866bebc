// Package dialog implements a resumable dialog engine: a registry of named
// dialogs, a per-conversation frame stack, and a waterfall step model.
//
// A dialog suspends by sending a prompt and returning a waiting result; the
// next inbound activity for the conversation drives resumption. All stack
// state lives in models.ConversationState so it can be persisted between
// turns.
package dialog

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Status reports how a turn left the dialog stack.
type Status string

const (
	// StatusEmpty means no dialog is active; the caller should begin one.
	StatusEmpty Status = "empty"
	// StatusWaiting means the active dialog sent a prompt and suspended.
	StatusWaiting Status = "waiting"
	// StatusComplete means the last dialog ended; Value holds its result.
	StatusComplete Status = "complete"
	// StatusCancelled means all dialogs were cancelled off the stack.
	StatusCancelled Status = "cancelled"
)

// Result is the outcome of driving the dialog stack for one turn.
type Result struct {
	Status Status
	Value  any
}

// Dialog is a named, resumable multi-step interaction.
type Dialog interface {
	// ID returns the dialog's registration name.
	ID() string
	// Begin starts the dialog; its frame has already been pushed.
	Begin(ctx context.Context, dc *Context, options any) (Result, error)
	// Continue resumes the dialog with a new inbound turn.
	Continue(ctx context.Context, dc *Context) (Result, error)
	// Resume re-enters the dialog after a child dialog popped, passing the
	// child's result.
	Resume(ctx context.Context, dc *Context, result any) (Result, error)
}

// Set is a registry of dialogs addressable by id.
type Set struct {
	dialogs map[string]Dialog
}

// NewSet creates an empty dialog set.
func NewSet() *Set {
	return &Set{dialogs: make(map[string]Dialog)}
}

// Add registers a dialog. It returns the set so registrations can be chained.
func (s *Set) Add(d Dialog) *Set {
	if _, exists := s.dialogs[d.ID()]; exists {
		slog.Warn("dialog.Set.Add: replacing registered dialog", "dialogID", d.ID())
	}
	s.dialogs[d.ID()] = d
	return s
}

// Find looks up a dialog by id.
func (s *Set) Find(id string) (Dialog, bool) {
	d, ok := s.dialogs[id]
	return d, ok
}

// DecodeOptions rebuilds a typed options value from one that has been
// through a JSON round-trip in persisted frame state.
func DecodeOptions(src any, dst any) error {
	if src == nil {
		return nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
