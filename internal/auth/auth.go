// Package auth wraps the external identity provider used to authenticate
// booking users.
//
// The provider is invoked at most once per relevant turn, with no internal
// retry; an empty token means "not authenticated" and the caller decides
// what to tell the user.
package auth

import (
	"context"
	"time"
)

// SignInTimeout is how long a pending sign-in may stay open before the
// flow reports failure and asks the user to retry.
const SignInTimeout = 300000 * time.Millisecond

// Provider is the external identity collaborator.
type Provider interface {
	// GetToken returns the user's token, or "" when not authenticated.
	GetToken(ctx context.Context, userID string) (string, error)

	// SignOut invalidates the user's session for the given connection.
	SignOut(ctx context.Context, userID, connectionName string) error
}
