package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/tricol/supplierchain/internal/domain"
)

// KeycloakConfig carries the realm coordinates for the OIDC identity
// provider.
type KeycloakConfig struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// KeycloakProvider exchanges credentials and refresh tokens against a
// Keycloak realm. Token issuance, refresh, and revocation all happen on the
// provider side; this client only forwards and surfaces the responses.
type KeycloakProvider struct {
	oauth     *oauth2.Config
	logoutURL string
	client    *http.Client
}

func NewKeycloakProvider(cfg KeycloakConfig) *KeycloakProvider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	realm := fmt.Sprintf("%s/realms/%s/protocol/openid-connect", base, cfg.Realm)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KeycloakProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  realm + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logoutURL: realm + "/logout",
		client:    &http.Client{Timeout: timeout},
	}
}

// Login forwards username/password through the resource-owner password
// grant and returns the provider token set unmodified.
func (p *KeycloakProvider) Login(ctx context.Context, username, password string) (*TokenSet, error) {
	tok, err := p.oauth.PasswordCredentialsToken(p.httpContext(ctx), username, password)
	if err != nil {
		return nil, providerError("login", err)
	}
	return tokenSetFrom(tok), nil
}

// Refresh exchanges a refresh token for a new token set.
func (p *KeycloakProvider) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	src := p.oauth.TokenSource(p.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, providerError("refresh", err)
	}
	return tokenSetFrom(tok), nil
}

// Logout invalidates the session bound to the refresh token.
func (p *KeycloakProvider) Logout(ctx context.Context, refreshToken string) error {
	form := url.Values{
		"client_id":     {p.oauth.ClientID},
		"client_secret": {p.oauth.ClientSecret},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.logoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return providerError("logout", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return providerError("logout", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: logout returned status %d", domain.ErrAuthProvider, resp.StatusCode)
	}
	return nil
}

func (p *KeycloakProvider) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}

// tokenSetFrom maps the provider response back to its wire fields.
// expires_in is taken from the raw response when present so the value the
// provider sent is what callers see; the Expiry fallback only covers
// responses that omit it.
func tokenSetFrom(tok *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if v, ok := tok.Extra("expires_in").(float64); ok {
		ts.ExpiresIn = int64(v)
	} else if !tok.Expiry.IsZero() {
		if secs := int64(time.Until(tok.Expiry).Seconds()); secs > 0 {
			ts.ExpiresIn = secs
		}
	}
	if v, ok := tok.Extra("refresh_expires_in").(float64); ok {
		ts.RefreshExpiresIn = int64(v)
	}
	if v, ok := tok.Extra("id_token").(string); ok {
		ts.IDToken = v
	}
	if v, ok := tok.Extra("not-before-policy").(float64); ok {
		ts.NotBeforePolicy = int64(v)
	}
	if v, ok := tok.Extra("session_state").(string); ok {
		ts.SessionState = v
	}
	if v, ok := tok.Extra("scope").(string); ok {
		ts.Scope = v
	}
	return ts
}

// providerError distinguishes a grant the provider rejected from a provider
// that could not be reached, without leaking credential material.
func providerError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		code := re.ErrorCode
		if code == "" {
			code = fmt.Sprintf("status %d", re.Response.StatusCode)
		}
		if re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s rejected (%s)", domain.ErrUnauthenticated, op, code)
		}
		return fmt.Errorf("%w: %s rejected (%s)", domain.ErrAuthProvider, op, code)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrAuthProvider, op, err)
}
