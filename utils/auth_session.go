package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// AuthSession is the identity resolved from a bearer token, cached by token hash.
type AuthSession struct {
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	Source   string    `json:"source"` // "jwt" or "firebase"
	CachedAt time.Time `json:"cachedAt"`
}

// SaveAuthSession caches the session under the token hash.
func SaveAuthSession(ctx context.Context, client *redis.Client, tokenHash string, session AuthSession) error {
	session.CachedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal auth session: %w", err)
	}
	if err := client.Set(ctx, AuthCachePrefix+tokenHash, data, AuthCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	return nil
}

// GetAuthSession returns the cached session, or nil when there is none.
func GetAuthSession(ctx context.Context, client *redis.Client, tokenHash string) (*AuthSession, error) {
	data, err := client.Get(ctx, AuthCachePrefix+tokenHash).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session AuthSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth session: %w", err)
	}
	return &session, nil
}

// DeleteAuthSession removes a cached session.
func DeleteAuthSession(ctx context.Context, client *redis.Client, tokenHash string) error {
	return client.Del(ctx, AuthCachePrefix+tokenHash).Err()
}
