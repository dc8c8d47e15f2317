package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/identity"
)

// GameService contains the quiz game use cases: starting sessions,
// answering rounds, and unlocking categories.
type GameService struct {
	questions QuestionRepository
	profiles  ProfileRepository
	scores    ScoreRepository
	games     GameLogRepository
	sessions  SessionRepository

	selector     *RoundSelector
	ticks        TickerFactory
	tickInterval time.Duration
	now          func() time.Time
}

// GameServiceOption tweaks a GameService at construction.
type GameServiceOption func(*GameService)

// WithTicker overrides the tick source driving round timers (test hook).
func WithTicker(factory TickerFactory, interval time.Duration) GameServiceOption {
	return func(s *GameService) {
		s.ticks = factory
		s.tickInterval = interval
	}
}

// WithClock overrides the service clock (test hook).
func WithClock(now func() time.Time) GameServiceOption {
	return func(s *GameService) { s.now = now }
}

// WithRand seeds round selection deterministically (test hook).
func WithRand(rnd *rand.Rand) GameServiceOption {
	return func(s *GameService) { s.selector = NewRoundSelector(rnd) }
}

func NewGameService(
	questions QuestionRepository,
	profiles ProfileRepository,
	scores ScoreRepository,
	games GameLogRepository,
	sessions SessionRepository,
	opts ...GameServiceOption,
) *GameService {
	s := &GameService{
		questions:    questions,
		profiles:     profiles,
		scores:       scores,
		games:        games,
		sessions:     sessions,
		selector:     NewRoundSelector(nil),
		ticks:        RealTicker,
		tickInterval: DefaultTickInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureUser upserts the caller's display name onto their profile record.
func (s *GameService) EnsureUser(ctx context.Context, username string) error {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return err
	}
	return retryStore(func() error {
		return s.profiles.EnsureUser(ctx, userID, username)
	})
}

// StartGame begins a session for the current user. The category's candidate
// pool is fetched once; per-round reselection reshuffles it in memory.
// Starting a new game replaces (and cancels) any session still running.
func (s *GameService) StartGame(ctx context.Context, categoryName, difficultyName string, roundsTotal int) (*GameSession, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(categoryName)
	if err != nil {
		return nil, err
	}
	difficulty, err := domain.ParseDifficulty(difficultyName)
	if err != nil {
		return nil, err
	}
	if roundsTotal <= 0 {
		return nil, fmt.Errorf("rounds total must be positive, got %d", roundsTotal)
	}

	var profile domain.UserProfile
	if err := retryStore(func() error {
		var err error
		profile, err = s.profiles.Get(ctx, userID)
		return err
	}); err != nil {
		return nil, err
	}
	if !profile.HasCategory(category) {
		return nil, domain.ErrCategoryLocked
	}

	var candidates []domain.Question
	if err := retryStore(func() error {
		var err error
		candidates, err = s.questions.ListByCategory(ctx, category)
		return err
	}); err != nil {
		return nil, err
	}

	if prior, ok := s.sessions.Get(userID); ok {
		prior.Close()
	}

	session := newGameSession(
		userID, category, difficulty, roundsTotal,
		candidates, s.selector, s.ticks, s.tickInterval,
		func(summary domain.GameSummary) { s.persistSummary(summary) },
	)
	if err := session.start(); err != nil {
		return nil, err
	}
	s.sessions.Put(userID, session)
	return session, nil
}

// SubmitAnswer resolves the current user's active round.
func (s *GameService) SubmitAnswer(ctx context.Context, choice string) (RoundResolved, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return RoundResolved{}, err
	}
	session, ok := s.sessions.Get(userID)
	if !ok {
		return RoundResolved{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(choice)
}

// UnlockCategory buys a category with points.
func (s *GameService) UnlockCategory(ctx context.Context, categoryName string) error {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return err
	}
	category, err := domain.ParseCategory(categoryName)
	if err != nil {
		return err
	}

	var profile domain.UserProfile
	if err := retryStore(func() error {
		var err error
		profile, err = s.profiles.Get(ctx, userID)
		return err
	}); err != nil {
		return err
	}
	if profile.HasCategory(category) {
		return nil
	}
	if profile.Points < category.Price() {
		return domain.ErrInsufficientFunds
	}

	if err := retryStore(func() error {
		return s.profiles.AddPoints(ctx, userID, -category.Price())
	}); err != nil {
		return err
	}
	return retryStore(func() error {
		return s.profiles.UnlockCategory(ctx, userID, category)
	})
}

// persistSummary writes the game-over summary: cumulative points, the
// append-only score fact, the recent-game description, and newly earned
// stars. It runs detached from any request, so failures are logged after the
// bounded retries are spent.
func (s *GameService) persistSummary(summary domain.GameSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	now := s.now()

	if err := retryStore(func() error {
		return s.profiles.AddPoints(ctx, summary.UserID, summary.Score)
	}); err != nil {
		log.Printf("persist game points for %s: %v", summary.UserID, err)
		return
	}
	if err := retryStore(func() error {
		return s.scores.Append(ctx, domain.ScoreEntry{
			UserID:    summary.UserID,
			Points:    summary.Score,
			Timestamp: now,
		})
	}); err != nil {
		log.Printf("persist score entry for %s: %v", summary.UserID, err)
	}
	if err := retryStore(func() error {
		return s.games.Append(ctx, summary.UserID, gameDescription(summary), now)
	}); err != nil {
		log.Printf("persist game log for %s: %v", summary.UserID, err)
	}
	if earned := summary.StarsEarned(); earned > 0 {
		if err := retryStore(func() error {
			return s.profiles.AddStars(ctx, summary.UserID, earned)
		}); err != nil {
			log.Printf("persist stars for %s: %v", summary.UserID, err)
		}
	}
}

func gameDescription(summary domain.GameSummary) string {
	return fmt.Sprintf("%s %s · %d rounds · %d points",
		summary.Category.Emoji(), summary.Category, summary.RoundsTotal, summary.Score)
}
