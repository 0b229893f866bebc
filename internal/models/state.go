// Package models defines persisted conversation state structures.
package models

import "time"

// Frame is one activation record of a dialog on the conversation's stack.
// Options and Values survive JSON round-trips through the store, so nested
// values are limited to JSON types (strings, numbers, bools, maps, slices).
type Frame struct {
	DialogID  string         `json:"dialog_id"`
	StepIndex int            `json:"step_index"`
	Options   any            `json:"options,omitempty"`
	Values    map[string]any `json:"values,omitempty"`
}

// ConversationState is the per-conversation persisted record. The stack is
// ordered bottom-first; the last frame is the active dialog.
type ConversationState struct {
	ConversationID string    `json:"conversation_id"`
	Stack          []Frame   `json:"stack,omitempty"`
	// LastTurn identifies the most recently processed inbound turn, so a
	// redelivery of the same activity does not drive the stack twice.
	LastTurn  string    `json:"last_turn,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether no dialog is active for the conversation.
func (s *ConversationState) Empty() bool {
	return s == nil || len(s.Stack) == 0
}
