package flow

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/dialog"
	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/recognizer"
)

var testNow = func() time.Time {
	return time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
}

// captureSender records outbound messages for assertions.
type captureSender struct {
	msgs []string
}

func (s *captureSender) SendMessage(ctx context.Context, to string, body string) error {
	s.msgs = append(s.msgs, body)
	return nil
}

func (s *captureSender) contains(substr string) bool {
	for _, m := range s.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (s *captureSender) last(t *testing.T) string {
	t.Helper()
	if len(s.msgs) == 0 {
		t.Fatal("no messages sent")
	}
	return s.msgs[len(s.msgs)-1]
}

// harness drives the flow set turn by turn, round-tripping the state
// through JSON the way a store backend would.
type harness struct {
	set    *dialog.Set
	sender *captureSender
	state  *models.ConversationState
}

func newHarness(cfg Config) *harness {
	if cfg.Now == nil {
		cfg.Now = testNow
	}
	return &harness{
		set:    NewSet(cfg),
		sender: &captureSender{},
		state:  &models.ConversationState{ConversationID: "+15550001111"},
	}
}

func (h *harness) turn(t *testing.T, text string) dialog.Result {
	t.Helper()
	activity := models.Activity{
		Type:           models.ActivityTypeMessage,
		Text:           text,
		ConversationID: h.state.ConversationID,
		From:           h.state.ConversationID,
	}
	dc := h.set.CreateContext(dialog.NewTurnContext(activity, h.sender), h.state)
	result, err := dc.ContinueDialog(context.Background())
	if err != nil {
		t.Fatalf("turn %q: %v", text, err)
	}
	if result.Status == dialog.StatusEmpty {
		result, err = dc.BeginDialog(context.Background(), RootDialogID, nil)
		if err != nil {
			t.Fatalf("begin root: %v", err)
		}
	}

	raw, err := json.Marshal(h.state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	restored := &models.ConversationState{}
	if err := json.Unmarshal(raw, restored); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	h.state = restored
	return result
}

func TestManualBookingEndToEnd(t *testing.T) {
	h := newHarness(Config{}) // no provider, no recognizer

	h.turn(t, "hello")
	if !h.sender.contains("You are now logged in.") {
		t.Fatal("missing login confirmation")
	}
	if !h.sender.contains("language understanding is not configured") {
		t.Fatal("missing degraded-NLU notice")
	}
	if h.sender.last(t) != "Which location do you need to book a meeting room?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "New Jersey")
	if !strings.HasPrefix(h.sender.last(t), "Which meeting room do you want to book?") {
		t.Fatalf("last = %q", h.sender.last(t))
	}
	if !strings.Contains(h.sender.last(t), "1. Boardroom A") {
		t.Fatalf("room list missing: %q", h.sender.last(t))
	}

	h.turn(t, "2")
	if h.sender.last(t) != "On what date would you like to book the meeting room?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "tomorrow")
	if h.sender.last(t) != "What time should the meeting room be booked for?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "2:30 pm")
	if h.sender.last(t) != "How long do you need the meeting room for?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "1 hr")
	confirm := h.sender.last(t)
	if !strings.Contains(confirm, "Boardroom B (New Jersey)") {
		t.Fatalf("confirmation = %q", confirm)
	}
	if !strings.Contains(confirm, "tomorrow") || !strings.Contains(confirm, "14:30") || !strings.Contains(confirm, "1 hour") {
		t.Fatalf("confirmation = %q", confirm)
	}

	result := h.turn(t, "yes")
	if result.Status != dialog.StatusComplete {
		t.Fatalf("status = %v", result.Status)
	}
	if !h.sender.contains("I have Boardroom B at New Jersey booked") {
		t.Fatalf("final message missing, got %q", h.sender.last(t))
	}
	if len(h.state.Stack) != 0 {
		t.Errorf("stack depth = %d after completion", len(h.state.Stack))
	}
}

func TestDecliningConfirmationSaysThankYou(t *testing.T) {
	h := newHarness(Config{})
	h.turn(t, "hello")
	h.turn(t, "Toronto")
	h.turn(t, "1")
	h.turn(t, "2024-05-20")
	h.turn(t, "9:15")
	h.turn(t, "30 min")
	result := h.turn(t, "no")
	if result.Status != dialog.StatusComplete {
		t.Fatalf("status = %v", result.Status)
	}
	if h.sender.last(t) != "Thank you." {
		t.Errorf("last = %q", h.sender.last(t))
	}
}

func TestRecognizerPreFillSkipsFilledSlots(t *testing.T) {
	provider := auth.NewMemoryProvider()
	provider.SetToken("+15550001111", "tok")
	rec := &recognizer.Mock{Result: recognizer.Result{
		TopIntent: recognizer.IntentBookMeetingRoom,
		Entities: []recognizer.Entity{
			{Type: recognizer.EntityTypeLocation, Value: "New Jersey"},
			{Type: recognizer.EntityTypeDatetime, Value: "2024-05-02T14:00"},
			{Type: recognizer.EntityTypeDuration, Value: "3600"},
		},
	}}
	h := newHarness(Config{Provider: provider, ConnectionName: "conn", Recognizer: rec})

	h.turn(t, "hello")
	if !h.sender.contains("What can I help you with today?") {
		t.Fatalf("missing intro prompt: %v", h.sender.msgs)
	}

	h.turn(t, "Book a meeting room for tomorrow at 2:00 PM for 1 hr. at New Jersey")
	if len(rec.Texts) != 1 || !strings.Contains(rec.Texts[0], "Book a meeting room") {
		t.Fatalf("recognizer saw %v", rec.Texts)
	}
	// Location, date, time, and duration all pre-filled; only the room is
	// asked for.
	if !strings.HasPrefix(h.sender.last(t), "Which meeting room do you want to book?") {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "Conference Hall")
	confirm := h.sender.last(t)
	if !strings.Contains(confirm, "Conference Hall (New Jersey)") || !strings.Contains(confirm, "tomorrow") || !strings.Contains(confirm, "1 hour") {
		t.Fatalf("confirmation = %q", confirm)
	}

	result := h.turn(t, "yes")
	if result.Status != dialog.StatusComplete {
		t.Fatalf("status = %v", result.Status)
	}

	details, err := models.DecodeBookingDetails(result.Value)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if details.MeetingRoom != "Conference Hall" || details.Location != "New Jersey" ||
		details.MeetingDate != "2024-05-02" || details.MeetingTime != "14:00" || details.DurationSeconds != 3600 {
		t.Errorf("details = %+v", details)
	}
}

func TestRecognizerFailureDegradesToManual(t *testing.T) {
	provider := auth.NewMemoryProvider()
	provider.SetToken("+15550001111", "tok")
	rec := &recognizer.Mock{Err: models.ErrRecognizerUnavailable}
	h := newHarness(Config{Provider: provider, Recognizer: rec})

	h.turn(t, "hello")
	h.turn(t, "book a room in Seattle tomorrow")
	if len(rec.Texts) != 1 {
		t.Fatalf("recognizer saw %v", rec.Texts)
	}
	// No pre-fill; the flow falls back to asking for every slot.
	if h.sender.last(t) != "Which location do you need to book a meeting room?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}
}

func TestAmbiguousDateGoesThroughResolver(t *testing.T) {
	provider := auth.NewMemoryProvider()
	provider.SetToken("+15550001111", "tok")
	rec := &recognizer.Mock{Result: recognizer.Result{
		TopIntent: recognizer.IntentBookMeetingRoom,
		Entities: []recognizer.Entity{
			{Type: recognizer.EntityTypeLocation, Value: "Seattle"},
			{Type: recognizer.EntityTypeDatetime, Value: "--05-01"},
		},
	}}
	h := newHarness(Config{Provider: provider, Recognizer: rec})

	h.turn(t, "hello")
	h.turn(t, "book a room on may 1")
	h.turn(t, "Boardroom A")
	// The pre-filled date has no year, so the resolver re-prompts with the
	// "including the month, day and year" message.
	if !strings.Contains(h.sender.last(t), "month, day and year") {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	// An ambiguous answer is rejected by the definite-date validator.
	h.turn(t, "5/1")
	if !strings.Contains(h.sender.last(t), "month, day and year") {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	h.turn(t, "2024-05-01")
	if h.sender.last(t) != "What time should the meeting room be booked for?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}
}

func TestVagueTimeIsReprompted(t *testing.T) {
	h := newHarness(Config{})
	h.turn(t, "hello")
	h.turn(t, "Austin")
	h.turn(t, "3")
	h.turn(t, "tomorrow")
	// "2" has no am/pm and no minutes; the time prompt rejects it.
	h.turn(t, "2")
	if !strings.Contains(h.sender.last(t), "hour and minutes") {
		t.Fatalf("last = %q", h.sender.last(t))
	}
	h.turn(t, "2:30 PM")
	if h.sender.last(t) != "How long do you need the meeting room for?" {
		t.Fatalf("last = %q", h.sender.last(t))
	}
}

func TestLoginTimeoutFailsFlow(t *testing.T) {
	provider := auth.NewMemoryProvider() // no token ever
	clock := testNow()
	now := func() time.Time { return clock }
	h := newHarness(Config{Provider: provider, Now: now})

	h.turn(t, "hello")
	if h.sender.last(t) != "Please login" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	clock = clock.Add(auth.SignInTimeout + time.Minute)
	result := h.turn(t, "still here")
	if result.Status != dialog.StatusComplete {
		t.Fatalf("status = %v", result.Status)
	}
	if !h.sender.contains("Login was not successful please try again.") {
		t.Fatalf("missing failure message: %v", h.sender.msgs)
	}
}

func TestLoginPollsUntilTokenAppears(t *testing.T) {
	provider := auth.NewMemoryProvider()
	h := newHarness(Config{Provider: provider})

	h.turn(t, "hello")
	h.turn(t, "anything")
	if h.sender.last(t) != "Please login" {
		t.Fatalf("last = %q", h.sender.last(t))
	}

	provider.SetToken("+15550001111", "tok")
	h.turn(t, "done")
	if !h.sender.contains("You are now logged in.") {
		t.Fatalf("missing login confirmation: %v", h.sender.msgs)
	}
}
