package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

func TestNewHTTPProviderRequiresEndpoint(t *testing.T) {
	t.Setenv("IDENTITY_ENDPOINT", "")
	t.Setenv("IDENTITY_CONNECTION_NAME", "")
	if _, err := NewHTTPProvider(); err == nil {
		t.Fatal("expected error without endpoint")
	}
}

func TestHTTPProviderGetToken(t *testing.T) {
	var gotPath, gotUser, gotConnection string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("user")
		gotConnection = r.URL.Query().Get("connection")
		w.Write([]byte(`{"token":"tok-123"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(WithEndpoint(srv.URL), WithConnectionName("roomgrabber"))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	token, err := p.GetToken(context.Background(), "+15550001111")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q", token)
	}
	if gotPath != "/token" || gotUser != "+15550001111" || gotConnection != "roomgrabber" {
		t.Errorf("request = %s user=%s connection=%s", gotPath, gotUser, gotConnection)
	}
}

func TestHTTPProviderGetTokenNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	token, err := p.GetToken(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty for 404", token)
	}
}

func TestHTTPProviderGetTokenServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	_, err = p.GetToken(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, models.ErrAuthFailed) {
		t.Fatalf("err = %v, want ErrAuthFailed", err)
	}
}

func TestHTTPProviderSignOut(t *testing.T) {
	var gotMethod, gotPath, gotConnection string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotConnection = r.URL.Query().Get("connection")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(WithEndpoint(srv.URL), WithConnectionName("roomgrabber"))
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	if err := p.SignOut(context.Background(), "u1", "roomgrabber"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/signout" || gotConnection != "roomgrabber" {
		t.Errorf("request = %s %s connection=%s", gotMethod, gotPath, gotConnection)
	}
}

func TestHTTPProviderEnvFallback(t *testing.T) {
	t.Setenv("IDENTITY_ENDPOINT", "http://identity.local")
	t.Setenv("IDENTITY_CONNECTION_NAME", "fallback-conn")
	p, err := NewHTTPProvider()
	if err != nil {
		t.Fatalf("NewHTTPProvider: %v", err)
	}
	if p.ConnectionName() != "fallback-conn" {
		t.Errorf("ConnectionName = %q", p.ConnectionName())
	}
}
