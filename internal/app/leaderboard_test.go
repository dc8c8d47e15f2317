package app_test

import (
	"context"
	"testing"
	"time"

	"emoji-quiz-service/internal/app"
	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/infra/docstore"
	"emoji-quiz-service/internal/infra/memory"
)

func seedScores(t *testing.T, scores *docstore.ScoreStore, userID string, entries ...domain.ScoreEntry) {
	t.Helper()
	for _, entry := range entries {
		entry.UserID = userID
		if err := scores.Append(context.Background(), entry); err != nil {
			t.Fatalf("append score for %s: %v", userID, err)
		}
	}
}

func TestRankUsersOrdersByWindowedTotals(t *testing.T) {
	store := memory.NewDocumentStore()
	profiles := docstore.NewProfileStore(store)
	scores := docstore.NewScoreStore(store)
	ctx := context.Background()

	for id, name := range map[string]string{"u1": "ada", "u2": "grace", "u3": "edsger"} {
		if err := profiles.EnsureUser(ctx, id, name); err != nil {
			t.Fatalf("ensure %s: %v", id, err)
		}
	}

	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	seedScores(t, scores, "u1",
		domain.ScoreEntry{Points: 40, Timestamp: now.Add(-time.Hour)},
		domain.ScoreEntry{Points: 60, Timestamp: now.Add(-2 * time.Hour)},
	)
	seedScores(t, scores, "u2",
		domain.ScoreEntry{Points: 150, Timestamp: now.Add(-3 * time.Hour)},
	)
	// u3 has never played and must still appear, ranked last with 0.

	board := app.NewLeaderboard(profiles, scores, func() time.Time { return now })
	rows, err := board.RankUsers(ctx, domain.WindowAll)
	if err != nil {
		t.Fatalf("rank users: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].UserID != "u2" || rows[0].TotalPoints != 150 {
		t.Fatalf("expected u2 on top with 150, got %+v", rows[0])
	}
	if rows[1].UserID != "u1" || rows[1].TotalPoints != 100 {
		t.Fatalf("expected u1 second with 100, got %+v", rows[1])
	}
	if rows[2].UserID != "u3" || rows[2].TotalPoints != 0 {
		t.Fatalf("expected u3 last with 0, got %+v", rows[2])
	}
	if rows[1].Username != "ada" {
		t.Fatalf("expected username carried onto the row, got %q", rows[1].Username)
	}
}

func TestRankUsersAppliesTimeWindow(t *testing.T) {
	store := memory.NewDocumentStore()
	profiles := docstore.NewProfileStore(store)
	scores := docstore.NewScoreStore(store)
	ctx := context.Background()

	if err := profiles.EnsureUser(ctx, "u1", "ada"); err != nil {
		t.Fatalf("ensure u1: %v", err)
	}
	if err := profiles.EnsureUser(ctx, "u2", "grace"); err != nil {
		t.Fatalf("ensure u2: %v", err)
	}

	// Wednesday noon: the week window opens Monday 00:00.
	now := time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)
	seedScores(t, scores, "u1",
		domain.ScoreEntry{Points: 500, Timestamp: now.AddDate(0, 0, -10)},
		domain.ScoreEntry{Points: 30, Timestamp: now.Add(-time.Hour)},
	)
	seedScores(t, scores, "u2",
		domain.ScoreEntry{Points: 80, Timestamp: now.AddDate(0, 0, -1)},
	)

	board := app.NewLeaderboard(profiles, scores, func() time.Time { return now })

	rows, err := board.RankUsers(ctx, domain.WindowWeek)
	if err != nil {
		t.Fatalf("rank week: %v", err)
	}
	if rows[0].UserID != "u2" || rows[0].TotalPoints != 80 {
		t.Fatalf("expected u2 to lead the week with 80, got %+v", rows[0])
	}
	if rows[1].UserID != "u1" || rows[1].TotalPoints != 30 {
		t.Fatalf("expected u1's stale 500 excluded, got %+v", rows[1])
	}

	rows, err = board.RankUsers(ctx, domain.WindowToday)
	if err != nil {
		t.Fatalf("rank today: %v", err)
	}
	if rows[0].UserID != "u1" || rows[0].TotalPoints != 30 {
		t.Fatalf("expected only u1's fresh entry today, got %+v", rows[0])
	}
	if rows[1].TotalPoints != 0 {
		t.Fatalf("expected u2 at 0 today, got %+v", rows[1])
	}

	rows, err = board.RankUsers(ctx, domain.WindowAll)
	if err != nil {
		t.Fatalf("rank all: %v", err)
	}
	if rows[0].UserID != "u1" || rows[0].TotalPoints != 530 {
		t.Fatalf("expected all-time total 530 for u1, got %+v", rows[0])
	}
}
