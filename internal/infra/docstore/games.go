package docstore

import (
	"context"
	"time"
)

// GameLogStore implements app.GameLogRepository: append-only recent-game
// descriptions per user.
type GameLogStore struct {
	store DocumentStore
}

func NewGameLogStore(store DocumentStore) *GameLogStore {
	return &GameLogStore{store: store}
}

func (s *GameLogStore) Append(ctx context.Context, userID, description string, at time.Time) error {
	return s.store.AppendRecord(ctx, gamesCollection(userID), at, map[string]any{
		"description": description,
		"timestamp":   at.Format(time.RFC3339),
	})
}

func gamesCollection(userID string) string {
	return "users/" + userID + "/games"
}
