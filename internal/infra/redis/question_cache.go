package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"emoji-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a category's questions from a backing store
// (e.g., document DB).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// QuestionCache caches category question pools in Redis as a JSON value per
// category and falls back to a loader on cache miss.
// Pools are stored as: SET category:{name}:questions {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	key := c.key(category)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if questions, ok := decodePool(raw); ok {
			return questions, nil
		}
	}

	result, err, _ := c.sf.Do(string(category), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := c.client.Get(ctx, key).Result()
		if err == nil {
			if questions, ok := decodePool(raw); ok {
				return questions, nil
			}
		}

		questions, err := c.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) key(category domain.Category) string {
	return "category:" + string(category) + ":questions"
}

func decodePool(raw string) ([]domain.Question, bool) {
	var questions []domain.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
