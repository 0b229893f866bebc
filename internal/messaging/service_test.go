package messaging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/twilioclient"
)

func TestCanonicalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+15550001111", "15550001111", false},
		{"1-555-000-1111", "15550001111", false},
		{"(555) 000-1111", "5550001111", false},
		{"whatsapp:+15550001111", "15550001111", false},
		{"123456", "123456", false},
		{"", "", true},
		{"no digits here", "", true},
		{"12345", "", true},
	}
	svc := NewMockService()
	for _, tc := range tests {
		got, err := svc.ValidateAndCanonicalizeRecipient(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("canonicalize(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalize(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeEmptyRecipientError(t *testing.T) {
	svc := NewMockService()
	_, err := svc.ValidateAndCanonicalizeRecipient("")
	if !errors.Is(err, models.ErrEmptyRecipient) {
		t.Fatalf("err = %v, want ErrEmptyRecipient", err)
	}
}

func TestTwilioServiceSendEmitsReceipt(t *testing.T) {
	mock := &twilioclient.MockClient{}
	svc := NewTwilioService(mock)

	if err := svc.SendMessage(context.Background(), "+15550001111", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	msgs := mock.Messages()
	if len(msgs) != 1 || msgs[0].To != "15550001111" || msgs[0].Body != "hello" {
		t.Fatalf("messages = %v", msgs)
	}

	select {
	case receipt := <-svc.Receipts():
		if receipt.To != "15550001111" || receipt.Status != models.MessageStatusSent {
			t.Fatalf("receipt = %+v", receipt)
		}
	case <-time.After(time.Second):
		t.Fatal("no receipt emitted")
	}
}

func TestTwilioServiceSendAfterStop(t *testing.T) {
	svc := NewTwilioService(&twilioclient.MockClient{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	err := svc.SendMessage(context.Background(), "+15550001111", "hello")
	if !errors.Is(err, ErrServiceStopped) {
		t.Fatalf("err = %v, want ErrServiceStopped", err)
	}
	// Stop is idempotent.
	if err := svc.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestTwilioServiceSendRejectsBadRecipient(t *testing.T) {
	mock := &twilioclient.MockClient{}
	svc := NewTwilioService(mock)
	if err := svc.SendMessage(context.Background(), "not a number", "hello"); err == nil {
		t.Fatal("expected validation error")
	}
	if len(mock.Messages()) != 0 {
		t.Fatal("message sent despite invalid recipient")
	}
}

func TestTwilioWebhookEmitsResponse(t *testing.T) {
	svc := NewTwilioService(&twilioclient.MockClient{})

	form := url.Values{"From": {"whatsapp:+15550001111"}, "Body": {"book a room"}}
	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	svc.WebhookHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	select {
	case resp := <-svc.Responses():
		if resp.From != "whatsapp:+15550001111" || resp.Body != "book a room" {
			t.Fatalf("response = %+v", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("no response emitted")
	}
}

func TestTwilioWebhookRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(&twilioclient.MockClient{})

	form := url.Values{"From": {"whatsapp:+15550001111"}}
	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	svc.WebhookHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMockServiceRecordsSends(t *testing.T) {
	svc := NewMockService()
	if err := svc.SendMessage(context.Background(), "+123", "hi"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	sent := svc.Sent()
	if len(sent) != 1 || sent[0].From != "+123" || sent[0].Body != "hi" {
		t.Fatalf("sent = %v", sent)
	}

	svc.SendErr = errors.New("boom")
	if err := svc.SendMessage(context.Background(), "+123", "hi"); err == nil {
		t.Fatal("expected configured send error")
	}
}
