package docstore

import (
	"context"
	"time"

	"emoji-quiz-service/internal/domain"
)

// ScoreStore implements app.ScoreRepository over a DocumentStore, writing
// into each user's append-only score subcollection.
type ScoreStore struct {
	store DocumentStore
}

func NewScoreStore(store DocumentStore) *ScoreStore {
	return &ScoreStore{store: store}
}

func (s *ScoreStore) Append(ctx context.Context, entry domain.ScoreEntry) error {
	return s.store.AppendRecord(ctx, scoresCollection(entry.UserID), entry.Timestamp, map[string]any{
		"points":    entry.Points,
		"timestamp": entry.Timestamp.Format(time.RFC3339),
	})
}

func (s *ScoreStore) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.ScoreEntry, error) {
	records, err := s.store.FetchSince(ctx, scoresCollection(userID), since)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ScoreEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.ScoreEntry{
			UserID:    userID,
			Points:    intField(record.Fields, "points"),
			Timestamp: timeField(record.Fields, "timestamp"),
		})
	}
	return entries, nil
}

func scoresCollection(userID string) string {
	return "users/" + userID + "/scores"
}
