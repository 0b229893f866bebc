package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Opts holds configuration options for the HTTP identity provider.
type Opts struct {
	Endpoint       string // base URL of the identity service
	ConnectionName string // connection to authenticate against
}

// Option defines a configuration option for the HTTP identity provider.
type Option func(*Opts)

// WithEndpoint sets the identity service base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *Opts) { o.Endpoint = endpoint }
}

// WithConnectionName sets the identity connection name.
func WithConnectionName(name string) Option {
	return func(o *Opts) { o.ConnectionName = name }
}

// HTTPProvider implements Provider against a token-issuing HTTP service.
type HTTPProvider struct {
	client         *http.Client
	endpoint       string
	connectionName string
}

// NewHTTPProvider creates an HTTP identity provider, falling back to the
// IDENTITY_ENDPOINT and IDENTITY_CONNECTION_NAME environment variables for
// unset options.
func NewHTTPProvider(opts ...Option) (*HTTPProvider, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("IDENTITY_ENDPOINT")
	}
	if cfg.ConnectionName == "" {
		cfg.ConnectionName = os.Getenv("IDENTITY_CONNECTION_NAME")
	}
	slog.Debug("auth.NewHTTPProvider: config loaded", "endpoint_set", cfg.Endpoint != "", "connection_set", cfg.ConnectionName != "")

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("identity endpoint must be provided")
	}
	return &HTTPProvider{
		client:         &http.Client{Timeout: 30 * time.Second},
		endpoint:       cfg.Endpoint,
		connectionName: cfg.ConnectionName,
	}, nil
}

// ConnectionName returns the configured identity connection name.
func (p *HTTPProvider) ConnectionName() string { return p.connectionName }

// GetToken asks the identity service for the user's token. A 404 means the
// user has no open session and is reported as "", not an error.
func (p *HTTPProvider) GetToken(ctx context.Context, userID string) (string, error) {
	u := fmt.Sprintf("%s/token?user=%s&connection=%s", p.endpoint, url.QueryEscape(userID), url.QueryEscape(p.connectionName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Error("auth.HTTPProvider.GetToken: request failed", "error", err, "user", userID)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("auth.HTTPProvider.GetToken: no session", "user", userID)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: identity service returned status %d", models.ErrAuthFailed, resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	slog.Debug("auth.HTTPProvider.GetToken: token issued", "user", userID, "token_set", body.Token != "")
	return body.Token, nil
}

// SignOut ends the user's session for the given connection.
func (p *HTTPProvider) SignOut(ctx context.Context, userID, connectionName string) error {
	u := fmt.Sprintf("%s/signout?user=%s&connection=%s", p.endpoint, url.QueryEscape(userID), url.QueryEscape(connectionName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		slog.Error("auth.HTTPProvider.SignOut: request failed", "error", err, "user", userID)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}
	slog.Info("auth.HTTPProvider.SignOut: user signed out", "user", userID)
	return nil
}
