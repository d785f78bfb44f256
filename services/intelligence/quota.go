package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DailyFreeTokens is the daily token allowance of free workers.
const DailyFreeTokens = 5000

// TokenQuota tracks per-user daily token usage in Redis.
type TokenQuota struct {
	client *redis.Client
	limit  int64
}

func NewTokenQuota(client *redis.Client, limit int64) *TokenQuota {
	return &TokenQuota{client: client, limit: limit}
}

func quotaKey(userID string, now time.Time) string {
	return fmt.Sprintf("ai:quota:%s:%s", userID, now.Format("2006-01-02"))
}

// Exceeded reports whether the user already spent the day's allowance.
func (q *TokenQuota) Exceeded(ctx context.Context, userID string, now time.Time) (bool, error) {
	used, err := q.client.Get(ctx, quotaKey(userID, now)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return used >= q.limit, nil
}

// Add records tokens spent today.
func (q *TokenQuota) Add(ctx context.Context, userID string, tokens int, now time.Time) error {
	if tokens <= 0 {
		return nil
	}
	key := quotaKey(userID, now)
	pipe := q.client.TxPipeline()
	pipe.IncrBy(ctx, key, int64(tokens))
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}
