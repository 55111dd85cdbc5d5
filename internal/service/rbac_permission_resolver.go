package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tricol/supplierchain/internal/observability"
	"github.com/tricol/supplierchain/internal/repository"
	"github.com/tricol/supplierchain/internal/security"
)

// RBACPermissionCacheStore caches resolved permission sets per identity and
// session token.
type RBACPermissionCacheStore interface {
	Get(ctx context.Context, username, tokenID string) ([]string, bool, error)
	Set(ctx context.Context, username, tokenID string, permissions []string, ttl time.Duration) error
	InvalidateUser(ctx context.Context, username string) error
	InvalidateAll(ctx context.Context) error
}

// CachedPermissionResolver resolves a caller's single role to its permission
// set, caching results and collapsing concurrent lookups for the same
// identity.
type CachedPermissionResolver struct {
	cacheStore RBACPermissionCacheStore
	users      repository.UserRepository
	rbac       *RBACService
	ttl        time.Duration
	sf         singleflight.Group
}

func NewCachedPermissionResolver(cacheStore RBACPermissionCacheStore, users repository.UserRepository, rbac *RBACService, ttl time.Duration) *CachedPermissionResolver {
	return &CachedPermissionResolver{
		cacheStore: cacheStore,
		users:      users,
		rbac:       rbac,
		ttl:        ttl,
	}
}

func (r *CachedPermissionResolver) ResolvePermissions(ctx context.Context, claims *security.Claims) ([]string, error) {
	if claims == nil {
		return nil, fmt.Errorf("missing claims")
	}
	username := strings.TrimSpace(claims.PreferredUsername)
	if username == "" {
		username = strings.TrimSpace(claims.Subject)
	}
	if username == "" {
		return nil, fmt.Errorf("missing subject")
	}
	tokenID := strings.TrimSpace(claims.ID)
	if tokenID == "" {
		tokenID = "none"
	}
	if r.cacheStore != nil && r.ttl > 0 {
		cached, ok, err := r.cacheStore.Get(ctx, username, tokenID)
		if err == nil && ok {
			observability.RecordPermissionCacheEvent(ctx, "hit")
			return cached, nil
		}
		observability.RecordPermissionCacheEvent(ctx, "miss")
	}

	sfKey := fmt.Sprintf("rbacperm:user:%s:token:%s", username, tokenID)
	result, err, shared := r.sf.Do(sfKey, func() (interface{}, error) {
		if r.cacheStore != nil && r.ttl > 0 {
			cached, ok, err := r.cacheStore.Get(ctx, username, tokenID)
			if err == nil && ok {
				return cached, nil
			}
		}
		user, err := r.users.FindByUsername(username)
		if err != nil {
			return nil, err
		}
		perms := r.rbac.PermissionsFromRole(&user.Role)
		if r.cacheStore != nil && r.ttl > 0 {
			_ = r.cacheStore.Set(ctx, username, tokenID, perms, r.ttl)
		}
		return perms, nil
	})
	if shared {
		observability.RecordPermissionCacheEvent(ctx, "singleflight_shared")
	}
	if err != nil {
		return nil, err
	}
	perms, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid permission result type")
	}
	return perms, nil
}

func (r *CachedPermissionResolver) InvalidateUser(ctx context.Context, username string) error {
	if r.cacheStore == nil {
		return nil
	}
	return r.cacheStore.InvalidateUser(ctx, username)
}

func (r *CachedPermissionResolver) InvalidateAll(ctx context.Context) error {
	if r.cacheStore == nil {
		return nil
	}
	return r.cacheStore.InvalidateAll(ctx)
}
