package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"emoji-quiz-service/internal/domain"
)

type countingLoader struct {
	calls int32
	pools map[domain.Category][]domain.Question
}

func (l *countingLoader) LoadQuestions(_ context.Context, category domain.Category) ([]domain.Question, error) {
	atomic.AddInt32(&l.calls, 1)
	if questions, ok := l.pools[category]; ok {
		return questions, nil
	}
	return nil, domain.ErrInsufficientData
}

func animalsPool() []domain.Question {
	return []domain.Question{
		{ID: "q1", Category: "animals", Prompt: "🐘", Answer: "elephant"},
		{ID: "q2", Category: "animals", Prompt: "🦒", Answer: "giraffe"},
	}
}

func TestQuestionCacheHitsAvoidLoader(t *testing.T) {
	loader := &countingLoader{pools: map[domain.Category][]domain.Question{
		domain.CategoryAnimals: animalsPool(),
	}}
	cache := NewQuestionCache(loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		questions, err := cache.ListByCategory(ctx, domain.CategoryAnimals)
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if len(questions) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(questions))
		}
	}
	if calls := atomic.LoadInt32(&loader.calls); calls != 1 {
		t.Fatalf("expected a single loader call, got %d", calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	loader := &countingLoader{pools: map[domain.Category][]domain.Question{
		domain.CategoryAnimals: animalsPool(),
	}}
	cache := NewQuestionCache(loader, time.Minute)

	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	ctx := context.Background()
	if _, err := cache.ListByCategory(ctx, domain.CategoryAnimals); err != nil {
		t.Fatalf("first list: %v", err)
	}

	// Jitter keeps the entry alive for at most ttl+10%.
	now = now.Add(2 * time.Minute)
	if _, err := cache.ListByCategory(ctx, domain.CategoryAnimals); err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if calls := atomic.LoadInt32(&loader.calls); calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", calls)
	}
}

func TestQuestionCacheSingleFlight(t *testing.T) {
	loader := &countingLoader{pools: map[domain.Category][]domain.Question{
		domain.CategoryAnimals: animalsPool(),
	}}
	cache := NewQuestionCache(loader, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.ListByCategory(ctx, domain.CategoryAnimals); err != nil {
				t.Errorf("concurrent list: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&loader.calls); calls != 1 {
		t.Fatalf("expected concurrent misses to share one load, got %d", calls)
	}
}

func TestQuestionCachePropagatesLoaderErrors(t *testing.T) {
	cache := NewQuestionCache(&countingLoader{}, time.Minute)
	if _, err := cache.ListByCategory(context.Background(), domain.CategoryMovies); !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestStaticQuestionLoader(t *testing.T) {
	loader := NewStaticQuestionLoader(map[domain.Category][]domain.Question{
		domain.CategoryAnimals: animalsPool(),
	})
	questions, err := loader.LoadQuestions(context.Background(), domain.CategoryAnimals)
	if err != nil || len(questions) != 2 {
		t.Fatalf("expected pool, got %v %v", questions, err)
	}
	if _, err := loader.LoadQuestions(context.Background(), domain.CategoryFood); !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for missing category, got %v", err)
	}
}
