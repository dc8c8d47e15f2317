package app

import (
	"context"
	"sort"
	"time"

	"emoji-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Leaderboard aggregates per-user score history into a ranked board.
type Leaderboard struct {
	profiles ProfileRepository
	scores   ScoreRepository
	now      func() time.Time
}

func NewLeaderboard(profiles ProfileRepository, scores ScoreRepository, now func() time.Time) *Leaderboard {
	if now == nil {
		now = time.Now
	}
	return &Leaderboard{profiles: profiles, scores: scores, now: now}
}

// RankUsers sums each user's windowed score history and ranks the totals.
// The per-user fetches fan out concurrently and the board is only produced
// once every fetch has completed; no partial snapshot is ever returned.
// Users with no qualifying entries appear with total 0, and ties keep their
// input order.
func (l *Leaderboard) RankUsers(ctx context.Context, window domain.Window) ([]domain.LeaderboardRow, error) {
	var users []domain.UserProfile
	if err := retryStore(func() error {
		var err error
		users, err = l.profiles.List(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	since := window.Start(l.now())
	rows := make([]domain.LeaderboardRow, len(users))

	g, gctx := errgroup.WithContext(ctx)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			var entries []domain.ScoreEntry
			if err := retryStore(func() error {
				var err error
				entries, err = l.scores.ListSince(gctx, user.ID, since)
				return err
			}); err != nil {
				return err
			}
			total := 0
			for _, entry := range entries {
				total += entry.Points
			}
			rows[i] = domain.LeaderboardRow{
				UserID:      user.ID,
				Username:    user.Username,
				TotalPoints: total,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})
	return rows, nil
}
