package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRBACPermissionCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRBACPermissionCacheStore(client redis.UniversalClient, prefix string) *RedisRBACPermissionCacheStore {
	if prefix == "" {
		prefix = "rbacperm"
	}
	return &RedisRBACPermissionCacheStore{client: client, prefix: prefix}
}

func (s *RedisRBACPermissionCacheStore) key(username, tokenID string) string {
	return fmt.Sprintf("%s:user:%s:token:%s", s.prefix, username, tokenID)
}

func (s *RedisRBACPermissionCacheStore) userPattern(username string) string {
	return fmt.Sprintf("%s:user:%s:token:*", s.prefix, username)
}

func (s *RedisRBACPermissionCacheStore) Get(ctx context.Context, username, tokenID string) ([]string, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	raw, err := s.client.Get(ctx, s.key(username, tokenID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false, err
	}
	return perms, true, nil
}

func (s *RedisRBACPermissionCacheStore) Set(ctx context.Context, username, tokenID string, permissions []string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(permissions)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(username, tokenID), raw, ttl).Err()
}

func (s *RedisRBACPermissionCacheStore) InvalidateUser(ctx context.Context, username string) error {
	if s.client == nil {
		return nil
	}
	return s.deleteByPattern(ctx, s.userPattern(username))
}

func (s *RedisRBACPermissionCacheStore) InvalidateAll(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.deleteByPattern(ctx, s.prefix+":user:*")
}

func (s *RedisRBACPermissionCacheStore) deleteByPattern(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

type inMemoryCacheEntry struct {
	permissions []string
	expiresAt   time.Time
}

// InMemoryRBACPermissionCacheStore backs the resolver when Redis is not
// configured. Single-process only.
type InMemoryRBACPermissionCacheStore struct {
	mu      sync.Mutex
	entries map[string]inMemoryCacheEntry
}

func NewInMemoryRBACPermissionCacheStore() *InMemoryRBACPermissionCacheStore {
	return &InMemoryRBACPermissionCacheStore{entries: make(map[string]inMemoryCacheEntry)}
}

func (s *InMemoryRBACPermissionCacheStore) Get(_ context.Context, username, tokenID string) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[username+"\x00"+tokenID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, username+"\x00"+tokenID)
		return nil, false, nil
	}
	out := make([]string, len(entry.permissions))
	copy(out, entry.permissions)
	return out, true, nil
}

func (s *InMemoryRBACPermissionCacheStore) Set(_ context.Context, username, tokenID string, permissions []string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make([]string, len(permissions))
	copy(stored, permissions)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[username+"\x00"+tokenID] = inMemoryCacheEntry{permissions: stored, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryRBACPermissionCacheStore) InvalidateUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if len(key) > len(username) && key[:len(username)+1] == username+"\x00" {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *InMemoryRBACPermissionCacheStore) InvalidateAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]inMemoryCacheEntry)
	return nil
}
