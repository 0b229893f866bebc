// Package store provides storage backends for RoomGrabber conversation
// state.
//
// It includes an in-memory store for tests and SQLite/PostgreSQL stores for
// persistent deployments. The conversation state is read once at the start
// of a turn and written once before the turn ends.
package store

import (
	"sync"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Store is the conversation-state persistence interface.
type Store interface {
	// GetConversationState returns the persisted state for a conversation,
	// or nil when the conversation has none yet.
	GetConversationState(conversationID string) (*models.ConversationState, error)

	// SaveConversationState inserts or replaces the conversation's state.
	SaveConversationState(state models.ConversationState) error

	// DeleteConversationState removes the conversation's state.
	DeleteConversationState(conversationID string) error

	// AddReceipt records a delivery receipt for an outbound message.
	AddReceipt(receipt models.Receipt) error

	// AddResponse records an inbound message.
	AddResponse(response models.Response) error

	// Close releases the backend's resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore is a map-backed Store for tests and ephemeral runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	states    map[string]models.ConversationState
	receipts  []models.Receipt
	responses []models.Response
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]models.ConversationState)}
}

// GetConversationState returns a copy of the conversation's state, or nil.
func (s *InMemoryStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[conversationID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// SaveConversationState inserts or replaces the conversation's state.
func (s *InMemoryStore) SaveConversationState(state models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.UpdatedAt = time.Now()
	if existing, ok := s.states[state.ConversationID]; ok {
		state.CreatedAt = existing.CreatedAt
	} else if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}
	s.states[state.ConversationID] = state
	return nil
}

// DeleteConversationState removes the conversation's state.
func (s *InMemoryStore) DeleteConversationState(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, conversationID)
	return nil
}

// AddReceipt records a delivery receipt.
func (s *InMemoryStore) AddReceipt(receipt models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, receipt)
	return nil
}

// AddResponse records an inbound message.
func (s *InMemoryStore) AddResponse(response models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, response)
	return nil
}

// Receipts returns all recorded receipts, for tests.
func (s *InMemoryStore) Receipts() []models.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Receipt(nil), s.receipts...)
}

// Responses returns all recorded responses, for tests.
func (s *InMemoryStore) Responses() []models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Response(nil), s.responses...)
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
