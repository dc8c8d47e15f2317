package app

import (
	"context"
	"time"

	"emoji-quiz-service/internal/domain"
)

// QuestionRepository serves candidate questions for a category
// (from cache/backing store).
type QuestionRepository interface {
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// ProfileRepository reads and writes the remote user record. A missing
// record loads as the zero profile; that default is acceptable only for
// new-user bootstrap, never for mid-session faults.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	EnsureUser(ctx context.Context, userID, username string) error
	AddPoints(ctx context.Context, userID string, delta int) error
	AddStars(ctx context.Context, userID string, delta int) error
	SetLastFreeSpin(ctx context.Context, userID string, at time.Time) error
	UnlockCategory(ctx context.Context, userID string, category domain.Category) error
}

// ScoreRepository stores append-only per-game score facts.
type ScoreRepository interface {
	Append(ctx context.Context, entry domain.ScoreEntry) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.ScoreEntry, error)
}

// GameLogRepository stores append-only recent-game descriptions.
type GameLogRepository interface {
	Append(ctx context.Context, userID, description string, at time.Time) error
}

// SessionRepository abstracts how game sessions are stored
// (in-memory, Redis, etc).
type SessionRepository interface {
	Put(userID string, session *GameSession)
	Get(userID string) (*GameSession, bool)
	Delete(userID string)
}
