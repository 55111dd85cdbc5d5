package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/service"
)

type fakeIdentityProvider struct {
	tokens     *service.TokenSet
	loginErr   error
	refreshErr error
	logoutErr  error

	lastUsername string
	lastRefresh  string
}

func (f *fakeIdentityProvider) Login(_ context.Context, username, password string) (*service.TokenSet, error) {
	f.lastUsername = username
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.tokens, nil
}

func (f *fakeIdentityProvider) Refresh(_ context.Context, refreshToken string) (*service.TokenSet, error) {
	f.lastRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.tokens, nil
}

func (f *fakeIdentityProvider) Logout(_ context.Context, refreshToken string) error {
	f.lastRefresh = refreshToken
	return f.logoutErr
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLoginReturnsProviderTokens(t *testing.T) {
	idp := &fakeIdentityProvider{tokens: &service.TokenSet{
		AccessToken:      "at-123",
		ExpiresIn:        300,
		RefreshToken:     "rt-456",
		RefreshExpiresIn: 1800,
		TokenType:        "Bearer",
		SessionState:     "sess-1",
		Scope:            "profile email",
	}}
	h := NewAuthHandler(idp)

	rr := postJSON(t, h.Login, `{"username":"magasinier","password":"magasinier123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if idp.lastUsername != "magasinier" {
		t.Fatalf("provider called with %q", idp.lastUsername)
	}

	var got service.TokenSet
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.AccessToken != "at-123" || got.RefreshToken != "rt-456" {
		t.Fatalf("token set not passed through: %+v", got)
	}
	if got.ExpiresIn != 300 || got.RefreshExpiresIn != 1800 {
		t.Fatalf("expiries not passed through: %+v", got)
	}
	if got.SessionState != "sess-1" || got.Scope != "profile email" {
		t.Fatalf("extras not passed through: %+v", got)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	h := NewAuthHandler(&fakeIdentityProvider{})
	rr := postJSON(t, h.Login, `{"username":"admin"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "VALIDATION_FAILED") {
		t.Fatalf("expected validation error body, got %s", rr.Body.String())
	}
}

func TestLoginRejectsMalformedJSON(t *testing.T) {
	h := NewAuthHandler(&fakeIdentityProvider{})
	rr := postJSON(t, h.Login, `{"username":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginInvalidCredentialsIs401(t *testing.T) {
	idp := &fakeIdentityProvider{loginErr: fmt.Errorf("%w: login rejected (invalid_grant)", domain.ErrUnauthenticated)}
	h := NewAuthHandler(idp)
	rr := postJSON(t, h.Login, `{"username":"admin","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "wrong") {
		t.Fatalf("credential leaked into response: %s", rr.Body.String())
	}
}

func TestLoginProviderUnavailableIs503(t *testing.T) {
	idp := &fakeIdentityProvider{loginErr: fmt.Errorf("%w: login: connection refused", domain.ErrAuthProvider)}
	h := NewAuthHandler(idp)
	rr := postJSON(t, h.Login, `{"username":"admin","password":"admin123"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "AUTH_PROVIDER_UNAVAILABLE") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestRefreshPassesTokenThrough(t *testing.T) {
	idp := &fakeIdentityProvider{tokens: &service.TokenSet{AccessToken: "at-2", TokenType: "Bearer"}}
	h := NewAuthHandler(idp)
	rr := postJSON(t, h.Refresh, `{"refreshToken":"rt-456"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if idp.lastRefresh != "rt-456" {
		t.Fatalf("provider called with %q", idp.lastRefresh)
	}
}

func TestRefreshRejectsUnknownFieldName(t *testing.T) {
	h := NewAuthHandler(&fakeIdentityProvider{})
	rr := postJSON(t, h.Refresh, `{"refresh_token":"rt-456"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "VALIDATION_FAILED") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	h := NewAuthHandler(&fakeIdentityProvider{})
	rr := postJSON(t, h.Refresh, `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLogoutReturnsEmptyOK(t *testing.T) {
	idp := &fakeIdentityProvider{}
	h := NewAuthHandler(idp)
	rr := postJSON(t, h.Logout, `{"refreshToken":"rt-456"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rr.Body.String())
	}
}

func TestLogoutInvalidTokenIs401(t *testing.T) {
	idp := &fakeIdentityProvider{logoutErr: fmt.Errorf("%w: logout rejected (invalid_grant)", domain.ErrUnauthenticated)}
	h := NewAuthHandler(idp)
	rr := postJSON(t, h.Logout, `{"refreshToken":"stale"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
