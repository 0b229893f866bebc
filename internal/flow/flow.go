// Package flow implements the RoomGrabber booking flows on top of the
// dialog engine: the root flow, the booking sub-flow, the date resolver,
// and the cross-cutting interrupt layer.
package flow

import (
	"time"

	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/recognizer"
	"github.com/roomgrabber/roomgrabber/internal/timex"
)

// Dialog ids registered in the set. RootDialogID is what the bot begins on
// a fresh conversation.
const (
	RootDialogID    = "mainDialog"
	bookingDialogID = "bookingDialog"
	dateResolverID  = "dateResolverDialog"
	loginPromptID   = "loginPrompt"
	textPromptID    = "textPrompt"
	confirmPromptID = "confirmPrompt"
	roomPromptID    = "roomPrompt"
	datePromptID    = "datePrompt"
	timePromptID    = "timePrompt"
)

// DefaultRooms is the fixed room list offered by the room choice prompt.
var DefaultRooms = []string{"Boardroom A", "Boardroom B", "Huddle Room 1", "Conference Hall"}

// Config carries the flow collaborators, threaded down explicitly from the
// process bootstrap. A nil Recognizer disables NLU pre-fill; manual slot
// filling still works.
type Config struct {
	Provider       auth.Provider
	ConnectionName string
	Recognizer     recognizer.Recognizer
	Rooms          []string
	Now            func() time.Time
}

// NewSet builds the dialog set for the booking flows.
func NewSet(cfg Config) *dialog.Set {
	if len(cfg.Rooms) == 0 {
		cfg.Rooms = DefaultRooms
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	main := &MainDialog{cfg: cfg}
	booking := &BookingDialog{rooms: cfg.Rooms, now: cfg.Now}
	resolver := &DateResolverDialog{}

	set := dialog.NewSet()
	set.Add(NewLoginPrompt(loginPromptID, cfg.Provider, cfg.Now)).
		Add(dialog.NewTextPrompt(textPromptID, nil)).
		Add(dialog.NewConfirmPrompt(confirmPromptID)).
		Add(dialog.NewChoicePrompt(roomPromptID)).
		Add(dialog.NewDateTimePrompt(datePromptID, definiteDateValidator, cfg.Now)).
		Add(dialog.NewDateTimePrompt(timePromptID, definiteTimeValidator, cfg.Now)).
		Add(dialog.NewWaterfall(dateResolverID, resolver.initialStep, resolver.finalStep)).
		Add(dialog.NewWaterfall(bookingDialogID,
			booking.locationStep,
			booking.roomStep,
			booking.dateStep,
			booking.timeStep,
			booking.durationStep,
			booking.confirmStep,
			booking.finalStep,
		)).
		Add(dialog.NewWaterfall(RootDialogID,
			main.promptStep,
			main.introStep,
			main.commandStep,
			main.actStep,
			main.finalStep,
		))
	return set
}

// definiteDateValidator requires a definite, date-typed value: year, month,
// and day all present and no time component.
func definiteDateValidator(resolutions []timex.Resolution) bool {
	r := resolutions[0]
	return r.Type == "date" && r.Property.IsDefiniteDate()
}

// definiteTimeValidator requires hour and minute to both be present.
func definiteTimeValidator(resolutions []timex.Resolution) bool {
	return resolutions[0].Property.IsDefiniteTime()
}
