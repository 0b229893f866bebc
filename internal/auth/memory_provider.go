package auth

import (
	"context"
	"sync"
)

// MemoryProvider is an in-process Provider used in tests and auth-less
// deployments. Tokens are set out of band via SetToken.
type MemoryProvider struct {
	mu     sync.RWMutex
	tokens map[string]string

	// SignOuts records sign-out calls for test assertions.
	SignOuts []string
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{tokens: make(map[string]string)}
}

// SetToken installs a token for a user.
func (p *MemoryProvider) SetToken(userID, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[userID] = token
}

// GetToken returns the user's installed token, or "".
func (p *MemoryProvider) GetToken(ctx context.Context, userID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tokens[userID], nil
}

// SignOut removes the user's token.
func (p *MemoryProvider) SignOut(ctx context.Context, userID, connectionName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, userID)
	p.SignOuts = append(p.SignOuts, userID)
	return nil
}
