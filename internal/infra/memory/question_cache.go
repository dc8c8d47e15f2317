package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"emoji-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a category's questions from a backing store
// (e.g., document DB).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// QuestionCache caches category question pools with TTL to avoid refetching
// the whole pool on every round.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Category]cachedPool
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Category]cachedPool),
	}
}

func (c *QuestionCache) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if pool, ok := c.cache[category]; ok && pool.expiresAt.After(now) {
		c.mu.RUnlock()
		return pool.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(string(category), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if pool, ok := c.cache[category]; ok && pool.expiresAt.After(now) {
			c.mu.RUnlock()
			return pool.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.LoadQuestions(ctx, category)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[category] = cachedPool{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a loader backed by an in-memory map (useful for
// tests/demos).
type StaticQuestionLoader struct {
	pools map[domain.Category][]domain.Question
}

func NewStaticQuestionLoader(pools map[domain.Category][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{pools: pools}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, category domain.Category) ([]domain.Question, error) {
	if questions, ok := l.pools[category]; ok {
		return questions, nil
	}
	return nil, domain.ErrInsufficientData
}
