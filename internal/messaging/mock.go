package messaging

import (
	"context"
	"sync"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// MockService implements Service for tests. Sent messages are recorded, and
// tests inject inbound traffic with InjectResponse.
type MockService struct {
	mu        sync.Mutex
	sent      []models.Response
	receipts  chan models.Receipt
	responses chan models.Response
	SendErr   error
}

// NewMockService creates a MockService with buffered event channels.
func NewMockService() *MockService {
	return &MockService{
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
		responses: make(chan models.Response, DefaultChannelBufferSize),
	}
}

func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (m *MockService) SendMessage(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, models.Response{From: to, Body: body})
	return nil
}

func (m *MockService) Start(ctx context.Context) error { return nil }

func (m *MockService) Stop() error {
	close(m.receipts)
	close(m.responses)
	return nil
}

func (m *MockService) Receipts() <-chan models.Receipt { return m.receipts }

func (m *MockService) Responses() <-chan models.Response { return m.responses }

// InjectResponse feeds an inbound message into the Responses channel.
func (m *MockService) InjectResponse(response models.Response) {
	m.responses <- response
}

// Sent returns a copy of the messages sent so far. The From field holds the
// recipient.
func (m *MockService) Sent() []models.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Response(nil), m.sent...)
}
