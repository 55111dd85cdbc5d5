package service

import (
	"context"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/security"
)

// TokenSet is the identity provider's token response, surfaced to callers
// with the provider's own field names and values. Fields the provider did
// not send stay empty.
type TokenSet struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"`
	TokenType        string `json:"token_type"`
	IDToken          string `json:"id_token,omitempty"`
	NotBeforePolicy  int64  `json:"not-before-policy,omitempty"`
	SessionState     string `json:"session_state,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// IdentityProvider is the external system of record for authentication and
// token lifecycle. This service never issues tokens itself.
type IdentityProvider interface {
	Login(ctx context.Context, username, password string) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

// RBACAuthorizer decides allow/deny for role and permission checks.
type RBACAuthorizer interface {
	HasRole(roles []string, required domain.RoleName) bool
	HasPermission(permissions []string, required domain.PermissionName) bool
}

// PermissionResolver maps an authenticated identity to its effective
// permission set via the caller's single role.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, claims *security.Claims) ([]string, error)
}
