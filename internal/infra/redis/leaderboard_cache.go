package redis

import (
	"context"
	"encoding/json"
	"time"

	"emoji-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Ranker produces a ranked leaderboard for a time window.
type Ranker interface {
	RankUsers(ctx context.Context, window domain.Window) ([]domain.LeaderboardRow, error)
}

// LeaderboardCache caches ranked snapshots per window for a short TTL so a
// busy board doesn't fan out a fresh aggregation on every request.
type LeaderboardCache struct {
	client *redis.Client
	inner  Ranker
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, inner Ranker, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, inner: inner, ttl: ttl}
}

func (c *LeaderboardCache) RankUsers(ctx context.Context, window domain.Window) ([]domain.LeaderboardRow, error) {
	key := c.key(window)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var rows []domain.LeaderboardRow
		if err := json.Unmarshal([]byte(raw), &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := c.inner.RankUsers(ctx, window)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(rows); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	return rows, nil
}

func (c *LeaderboardCache) key(window domain.Window) string {
	return "leaderboard:" + window.String()
}
