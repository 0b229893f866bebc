// Package models defines the core data structures for RoomGrabber.
//
// It includes activity and message types shared across modules, plus the
// error taxonomy used by the dialog engine and its collaborators.
package models

import (
	"errors"
	"strings"
	"time"
)

// ActivityType identifies the kind of inbound activity for a conversation.
type ActivityType string

const (
	// ActivityTypeMessage carries user-entered text.
	ActivityTypeMessage ActivityType = "message"
	// ActivityTypeConversationUpdate signals a participant joining the conversation.
	ActivityTypeConversationUpdate ActivityType = "conversationUpdate"
	// ActivityTypeEvent carries channel-level events (e.g. token responses).
	ActivityTypeEvent ActivityType = "event"
)

// Activity represents one inbound turn for a conversation. It is transient
// and never persisted.
type Activity struct {
	Type           ActivityType `json:"type"`
	Text           string       `json:"text,omitempty"`
	ConversationID string       `json:"conversation_id"`
	From           string       `json:"from,omitempty"`
	Timestamp      time.Time    `json:"timestamp,omitempty"`
}

// TrimmedText returns the activity text with surrounding whitespace removed.
func (a Activity) TrimmedText() string {
	return strings.TrimSpace(a.Text)
}

// MessageStatus describes delivery progress of an outbound message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// Receipt records the delivery status of an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response records an inbound message from a participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// Error variables for better error handling and testability.
var (
	// ErrUnparseable indicates date/time/duration text matched no recognized
	// pattern. Callers recover by re-prompting; never fatal.
	ErrUnparseable = errors.New("text did not match any recognized pattern")
	// ErrRecognizerUnavailable wraps extraction failures from the NLU
	// backend. Caught at the call site and treated as no entities found.
	ErrRecognizerUnavailable = errors.New("recognizer unavailable")
	// ErrAuthFailed wraps identity-service failures during token lookup.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrStackCorrupt indicates a persisted frame references an unknown
	// dialog id. Fatal for the turn; the stack is cleared.
	ErrStackCorrupt = errors.New("dialog stack references unknown dialog")
	// ErrEmptyRecipient indicates a message had no recipient.
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
)
