package health

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

// IdentityProviderChecker probes the realm's OIDC discovery document. A
// reachable provider is required for logins but not for serving already
// issued tokens.
type IdentityProviderChecker struct {
	discoveryURL string
	client       *http.Client
}

func NewIdentityProviderChecker(baseURL, realm string, client *http.Client) Checker {
	if baseURL == "" || realm == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &IdentityProviderChecker{
		discoveryURL: fmt.Sprintf("%s/realms/%s/.well-known/openid-configuration", baseURL, realm),
		client:       client,
	}
}

func (c *IdentityProviderChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "identity_provider", Healthy: true}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.discoveryURL, nil)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	resp, err := c.client.Do(req)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		res.Healthy = false
		res.Error = fmt.Sprintf("discovery returned status %d", resp.StatusCode)
	}
	return res
}
