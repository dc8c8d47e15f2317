package docstore

import (
	"context"
	"time"

	"emoji-quiz-service/internal/domain"
)

const usersCollection = "users"

// ProfileStore implements app.ProfileRepository over a DocumentStore.
type ProfileStore struct {
	store DocumentStore
}

func NewProfileStore(store DocumentStore) *ProfileStore {
	return &ProfileStore{store: store}
}

// Get loads a user profile. A missing document yields the zero profile:
// new users start with nothing rather than failing.
func (s *ProfileStore) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	record, ok, err := s.store.FetchOne(ctx, usersCollection, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !ok {
		return domain.UserProfile{ID: userID}, nil
	}
	return decodeProfile(userID, record.Fields), nil
}

func (s *ProfileStore) List(ctx context.Context) ([]domain.UserProfile, error) {
	records, err := s.store.FetchAll(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.UserProfile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, decodeProfile(record.ID, record.Fields))
	}
	return profiles, nil
}

func (s *ProfileStore) EnsureUser(ctx context.Context, userID, username string) error {
	return s.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"username": username,
	}, true)
}

func (s *ProfileStore) AddPoints(ctx context.Context, userID string, delta int) error {
	return s.store.Increment(ctx, usersCollection, userID, "points", delta)
}

func (s *ProfileStore) AddStars(ctx context.Context, userID string, delta int) error {
	return s.store.Increment(ctx, usersCollection, userID, "stars", delta)
}

func (s *ProfileStore) SetLastFreeSpin(ctx context.Context, userID string, at time.Time) error {
	return s.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"lastFreeSpin": at.Format(time.RFC3339),
	}, true)
}

func (s *ProfileStore) UnlockCategory(ctx context.Context, userID string, category domain.Category) error {
	return s.store.UnionAppend(ctx, usersCollection, userID, "unlockedCategories", string(category))
}

func decodeProfile(userID string, fields map[string]any) domain.UserProfile {
	return domain.UserProfile{
		ID:                     userID,
		Username:               stringField(fields, "username"),
		Points:                 intField(fields, "points"),
		Stars:                  intField(fields, "stars"),
		LastFreeSpin:           timeField(fields, "lastFreeSpin"),
		UnlockedCategories:     stringSliceField(fields, "unlockedCategories"),
		UnlockedLevels:         stringSliceField(fields, "unlockedLevels"),
		UnlockedQuestionCounts: intSliceField(fields, "unlockedQuestionCounts"),
	}
}
