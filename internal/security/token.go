package security

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tricol/supplierchain/internal/domain"
)

// RealmAccess mirrors the role claim structure the identity provider embeds
// in access tokens.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims are the access-token claims this service consumes. The raw realm
// role structure is kept so callers can surface it untouched.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string      `json:"preferred_username"`
	Email             string      `json:"email"`
	RealmAccess       RealmAccess `json:"realm_access"`
}

// Roles returns the caller's realm roles.
func (c *Claims) Roles() []string {
	return c.RealmAccess.Roles
}

// HasRole reports whether the claim set carries the given role.
func (c *Claims) HasRole(role domain.RoleName) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// TokenVerifier validates provider-issued access tokens. Production setups
// verify RS256 signatures against the provider's JWKS endpoint; a static
// HS256 secret is accepted for local development.
type TokenVerifier struct {
	jwks    keyfunc.Keyfunc
	secret  []byte
	methods []string
	leeway  time.Duration
}

// JWKSConfig carries the JWKS endpoint settings.
type JWKSConfig struct {
	URL             string
	ClientTimeout   time.Duration
	RefreshInterval time.Duration
	Leeway          time.Duration
}

// NewJWKSTokenVerifier builds a verifier backed by the provider's JWKS
// endpoint. Key material refreshes in the background; startup succeeds even
// when the endpoint is not reachable yet.
func NewJWKSTokenVerifier(cfg JWKSConfig) (*TokenVerifier, error) {
	timeout := cfg.ClientTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	storage, err := jwkset.NewStorageFromHTTP(cfg.URL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: timeout},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           cfg.RefreshInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks storage: %w", err)
	}
	kf, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("create keyfunc: %w", err)
	}
	return &TokenVerifier{jwks: kf, methods: []string{"RS256"}, leeway: cfg.Leeway}, nil
}

// NewStaticTokenVerifier builds an HS256 verifier from a shared secret.
func NewStaticTokenVerifier(secret string, leeway time.Duration) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), methods: []string{"HS256"}, leeway: leeway}
}

// NewTokenVerifierWithKeyfunc injects a prebuilt keyfunc. Used by tests to
// substitute a local JWK set.
func NewTokenVerifierWithKeyfunc(kf keyfunc.Keyfunc, leeway time.Duration) *TokenVerifier {
	return &TokenVerifier{jwks: kf, methods: []string{"RS256"}, leeway: leeway}
}

// Verify parses and validates an access token, returning its claims.
func (v *TokenVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	kf := v.keyfunc(ctx)
	token, err := jwt.ParseWithClaims(raw, claims, kf,
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

func (v *TokenVerifier) keyfunc(ctx context.Context) jwt.Keyfunc {
	if v.jwks != nil {
		return v.jwks.KeyfuncCtx(ctx)
	}
	return func(*jwt.Token) (interface{}, error) { return v.secret, nil }
}
