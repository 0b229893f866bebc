// Package recognizer provides the external natural-language recognizer used
// to pre-fill booking details from free text.
//
// The orchestrator only consumes one intent name and three entity types;
// anything else a backend returns is ignored.
package recognizer

import "context"

// IntentBookMeetingRoom is the only intent the booking flow acts on.
const IntentBookMeetingRoom = "Book_Meeting_Room"

// Entity type names the booking flow consumes.
const (
	EntityTypeLocation = "location"
	EntityTypeDatetime = "datetime"
	EntityTypeDuration = "duration"
)

// Entity is one typed extraction from the user's text. Datetime values are
// TIMEX-style strings; duration values are seconds or free text.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Result is the recognizer's reading of one utterance.
type Result struct {
	TopIntent string   `json:"topIntent"`
	Entities  []Entity `json:"entities"`
}

// EntityValue returns the value of the first entity of the given type, or "".
func (r Result) EntityValue(entityType string) string {
	for _, e := range r.Entities {
		if e.Type == entityType {
			return e.Value
		}
	}
	return ""
}

// Recognizer extracts an intent and entities from raw text. A failure is
// caught at the call site and treated as "no entities found".
type Recognizer interface {
	Recognize(ctx context.Context, text string) (Result, error)
}
