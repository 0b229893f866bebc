package models

import "encoding/json"

// BookingDetails accumulates the fields of a meeting-room booking across the
// booking flow. Date and time are TIMEX-style strings (see internal/timex);
// Duration is the raw user text and DurationSeconds its parsed value once a
// step has confirmed it. It crosses the dialog-stack boundary as options on
// entry and result on exit, so every field must be JSON-typed.
type BookingDetails struct {
	Location        string `json:"location,omitempty"`
	MeetingRoom     string `json:"meeting_room,omitempty"`
	MeetingDate     string `json:"meeting_date,omitempty"`
	MeetingTime     string `json:"meeting_time,omitempty"`
	Duration        string `json:"duration,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// DecodeBookingDetails rebuilds BookingDetails from a value that has been
// through a JSON round-trip (a map after store reload, or the struct itself
// within a single turn). A nil source yields an empty record.
func DecodeBookingDetails(src any) (BookingDetails, error) {
	var details BookingDetails
	if src == nil {
		return details, nil
	}
	if d, ok := src.(BookingDetails); ok {
		return d, nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return details, err
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		return details, err
	}
	return details, nil
}
