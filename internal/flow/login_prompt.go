package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/dialog"
)

const loginExpiresKey = "expires"

// LoginPrompt acquires a token from the identity provider. When the user
// already has a session the prompt ends immediately with the token; when
// not, it asks the user to log in and polls the provider on each following
// turn until a token appears or the sign-in timeout passes, in which case
// it ends with no result.
type LoginPrompt struct {
	id       string
	provider auth.Provider
	timeout  time.Duration
	now      func() time.Time
}

// NewLoginPrompt creates a login prompt over the given provider. A nil
// provider means authentication is not configured; the prompt then ends
// with an anonymous token so manual booking still works.
func NewLoginPrompt(id string, provider auth.Provider, now func() time.Time) *LoginPrompt {
	return &LoginPrompt{id: id, provider: provider, timeout: auth.SignInTimeout, now: now}
}

// ID returns the dialog's registration name.
func (p *LoginPrompt) ID() string { return p.id }

// Begin checks for an existing session and otherwise asks the user to log
// in, recording the sign-in deadline with the frame.
func (p *LoginPrompt) Begin(ctx context.Context, dc *dialog.Context, options any) (dialog.Result, error) {
	if p.provider == nil {
		slog.Debug("flow.LoginPrompt.Begin: no identity provider configured, skipping login", "conversation", dc.State.ConversationID)
		return dc.EndDialog(ctx, "anonymous")
	}

	user := userID(dc)
	token, err := p.provider.GetToken(ctx, user)
	if err != nil {
		slog.Error("flow.LoginPrompt.Begin: token lookup failed", "error", err, "user", user)
		token = ""
	}
	if token != "" {
		return dc.EndDialog(ctx, token)
	}

	dc.ActiveFrame().Values[loginExpiresKey] = p.now().Add(p.timeout).Format(time.RFC3339)
	if err := dc.Turn.SendActivity(ctx, "Please login"); err != nil {
		return dialog.Result{}, err
	}
	return dialog.Result{Status: dialog.StatusWaiting}, nil
}

// Continue polls the provider again. Past the deadline the prompt ends
// with no result, which the root flow reports as a failed login.
func (p *LoginPrompt) Continue(ctx context.Context, dc *dialog.Context) (dialog.Result, error) {
	if expires, ok := dc.ActiveFrame().Values[loginExpiresKey].(string); ok {
		if deadline, err := time.Parse(time.RFC3339, expires); err == nil && p.now().After(deadline) {
			slog.Info("flow.LoginPrompt.Continue: sign-in timed out", "conversation", dc.State.ConversationID)
			return dc.EndDialog(ctx, nil)
		}
	}

	user := userID(dc)
	token, err := p.provider.GetToken(ctx, user)
	if err != nil {
		slog.Error("flow.LoginPrompt.Continue: token lookup failed", "error", err, "user", user)
		token = ""
	}
	if token != "" {
		return dc.EndDialog(ctx, token)
	}
	if err := dc.Turn.SendActivity(ctx, "Please login"); err != nil {
		return dialog.Result{}, err
	}
	return dialog.Result{Status: dialog.StatusWaiting}, nil
}

// Resume re-checks the provider; login prompts push no children.
func (p *LoginPrompt) Resume(ctx context.Context, dc *dialog.Context, result any) (dialog.Result, error) {
	return p.Continue(ctx, dc)
}
