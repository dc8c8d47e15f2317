package app_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"emoji-quiz-service/internal/app"
	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/identity"
	"emoji-quiz-service/internal/infra/docstore"
	"emoji-quiz-service/internal/infra/memory"
)

// testTicker is a manually driven app.Ticker.
type testTicker struct {
	ch chan time.Time
}

func (m *testTicker) C() <-chan time.Time { return m.ch }
func (m *testTicker) Stop()               {}
func (m *testTicker) tick()               { m.ch <- time.Now() }

// tickerFactory hands out one testTicker per started round timer.
type tickerFactory struct {
	mu      sync.Mutex
	tickers []*testTicker
}

func (f *tickerFactory) make(time.Duration) app.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &testTicker{ch: make(chan time.Time, 8)}
	f.tickers = append(f.tickers, ticker)
	return ticker
}

func (f *tickerFactory) at(i int) *testTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[i]
}

type gameFixture struct {
	service  *app.GameService
	profiles *docstore.ProfileStore
	scores   *docstore.ScoreStore
	ticks    *tickerFactory
}

func newGameFixture(t *testing.T, pool []domain.Question) *gameFixture {
	t.Helper()
	store := memory.NewDocumentStore()
	if err := docstore.NewQuestionStore(store).SeedQuestions(context.Background(), pool); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	profiles := docstore.NewProfileStore(store)
	scores := docstore.NewScoreStore(store)
	games := docstore.NewGameLogStore(store)
	questions := memory.NewQuestionCache(docstore.NewQuestionStore(store), time.Minute)

	ticks := &tickerFactory{}
	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	service := app.NewGameService(
		questions, profiles, scores, games, memory.NewSessionStore(),
		app.WithTicker(ticks.make, 15*time.Second),
		app.WithRand(rand.New(rand.NewSource(11))),
		app.WithClock(func() time.Time { return now }),
	)
	return &gameFixture{service: service, profiles: profiles, scores: scores, ticks: ticks}
}

func userCtx(userID string) context.Context {
	return identity.WithUser(context.Background(), userID)
}

func nextRound(t *testing.T, events <-chan app.Event) app.RoundStarted {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before round started")
			}
			if round, isRound := ev.(app.RoundStarted); isRound {
				return round
			}
		case <-deadline:
			t.Fatalf("timed out waiting for round start")
		}
	}
}

func waitFinished(t *testing.T, events <-chan app.Event) domain.GameSummary {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before game over")
			}
			if finished, isFinished := ev.(app.GameFinished); isFinished {
				return finished.Summary
			}
		case <-deadline:
			t.Fatalf("timed out waiting for game over")
		}
	}
}

func TestSessionCorrectThenTimeout(t *testing.T) {
	fx := newGameFixture(t, questionPool(6))
	ctx := userCtx("u1")

	session, err := fx.service.StartGame(ctx, "animals", "easy", 2)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	events, cancel := session.Subscribe()
	defer cancel()

	round1 := nextRound(t, events)
	if round1.Round != 1 || round1.RoundsTotal != 2 {
		t.Fatalf("expected round 1 of 2, got %d of %d", round1.Round, round1.RoundsTotal)
	}

	resolved, err := fx.service.SubmitAnswer(ctx, round1.Options.Question.Answer)
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if !resolved.Correct || resolved.Awarded != 10 || resolved.TotalScore != 10 {
		t.Fatalf("expected correct answer worth 10, got %+v", resolved)
	}

	nextRound(t, events)
	// Let round 2 expire: one tick covers the full easy duration.
	fx.ticks.at(1).tick()

	summary := waitFinished(t, events)
	if summary.Score != 10 {
		t.Fatalf("expected final score 10, got %d", summary.Score)
	}
	if summary.Category != domain.CategoryAnimals || summary.RoundsTotal != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// GameOver is emitted exactly once.
	select {
	case ev, ok := <-events:
		if ok {
			if _, again := ev.(app.GameFinished); again {
				t.Fatalf("game over emitted twice")
			}
		}
	case <-time.After(100 * time.Millisecond):
	}

	// Persistence runs detached; poll for the cumulative points update.
	waitForCond(t, func() bool {
		profile, err := fx.profiles.Get(context.Background(), "u1")
		return err == nil && profile.Points == 10
	})
	entries, err := fx.scores.ListSince(context.Background(), "u1", time.Time{})
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(entries) != 1 || entries[0].Points != 10 {
		t.Fatalf("expected one score entry of 10, got %+v", entries)
	}
}

func TestStarThresholdsAreExact(t *testing.T) {
	// 5 rounds at 10 points each: max 50, thresholds 10, 30, 50.
	cases := []struct {
		name    string
		correct int
		want    [3]bool
	}{
		{"no correct answers", 0, [3]bool{false, false, false}},
		{"score 10 trips star one", 1, [3]bool{true, false, false}},
		{"score 30 trips star two", 3, [3]bool{true, true, false}},
		{"score 40 trips nothing new", 4, [3]bool{true, true, false}},
		{"score 50 trips all three", 5, [3]bool{true, true, true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newGameFixture(t, questionPool(6))
			ctx := userCtx("u1")

			session, err := fx.service.StartGame(ctx, "animals", "easy", 5)
			if err != nil {
				t.Fatalf("start game: %v", err)
			}
			events, cancel := session.Subscribe()
			defer cancel()

			for round := 0; round < 5; round++ {
				started := nextRound(t, events)
				choice := "definitely not an answer"
				if round < tc.correct {
					choice = started.Options.Question.Answer
				}
				if _, err := fx.service.SubmitAnswer(ctx, choice); err != nil {
					t.Fatalf("submit round %d: %v", round+1, err)
				}
			}

			summary := waitFinished(t, events)
			if summary.Score != tc.correct*10 {
				t.Fatalf("expected score %d, got %d", tc.correct*10, summary.Score)
			}
			if summary.Stars != tc.want {
				t.Fatalf("expected stars %v, got %v", tc.want, summary.Stars)
			}
		})
	}
}

func TestStaleExpiryIsNoOp(t *testing.T) {
	fx := newGameFixture(t, questionPool(6))
	ctx := userCtx("u1")

	session, err := fx.service.StartGame(ctx, "animals", "easy", 2)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	events, cancel := session.Subscribe()
	defer cancel()

	round1 := nextRound(t, events)
	if _, err := fx.service.SubmitAnswer(ctx, round1.Options.Question.Answer); err != nil {
		t.Fatalf("submit answer: %v", err)
	}

	// Ticking the cancelled round-1 timer must not expire round 2.
	fx.ticks.at(0).tick()
	time.Sleep(50 * time.Millisecond)

	if phase := session.Phase(); phase != domain.PhaseRoundActive {
		t.Fatalf("expected round 2 still active, got %v", phase)
	}
	if score := session.Score(); score != 10 {
		t.Fatalf("expected score unchanged at 10, got %d", score)
	}
}

func TestStartGamePreconditions(t *testing.T) {
	fx := newGameFixture(t, questionPool(6))

	if _, err := fx.service.StartGame(context.Background(), "animals", "easy", 2); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := fx.service.StartGame(userCtx("u1"), "movies", "easy", 2); !errors.Is(err, domain.ErrCategoryLocked) {
		t.Fatalf("expected ErrCategoryLocked, got %v", err)
	}
	if _, err := fx.service.StartGame(userCtx("u1"), "animals", "brutal", 2); !errors.Is(err, domain.ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
	}
	if _, err := fx.service.SubmitAnswer(userCtx("u2"), "anything"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	thin := newGameFixture(t, questionPool(3))
	if _, err := thin.service.StartGame(userCtx("u1"), "animals", "easy", 2); !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestUnlockCategory(t *testing.T) {
	fx := newGameFixture(t, questionPool(6))
	ctx := userCtx("u1")

	if err := fx.profiles.AddPoints(ctx, "u1", 600); err != nil {
		t.Fatalf("seed points: %v", err)
	}

	if err := fx.service.UnlockCategory(ctx, "movies"); err != nil {
		t.Fatalf("unlock movies: %v", err)
	}
	profile, err := fx.profiles.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Points != 100 {
		t.Fatalf("expected 100 points after unlock, got %d", profile.Points)
	}
	if !profile.HasCategory(domain.CategoryMovies) {
		t.Fatalf("expected movies unlocked, got %v", profile.UnlockedCategories)
	}

	// Re-unlocking is a no-op, not a second charge.
	if err := fx.service.UnlockCategory(ctx, "movies"); err != nil {
		t.Fatalf("re-unlock movies: %v", err)
	}
	profile, _ = fx.profiles.Get(ctx, "u1")
	if profile.Points != 100 {
		t.Fatalf("expected points unchanged at 100, got %d", profile.Points)
	}

	if err := fx.service.UnlockCategory(ctx, "songs"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}
