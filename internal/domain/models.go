package domain

import "time"

// Question is a single emoji riddle within a category. Immutable once fetched.
type Question struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Prompt   string `json:"prompt"` // the emoji sequence shown to the player
	Answer   string `json:"answer"`
}

// RoundOptions is a selected question plus its four shuffled display options.
// Invariant: exactly 4 distinct options, Question.Answer present exactly once.
type RoundOptions struct {
	Question Question `json:"question"`
	Options  []string `json:"options"`
}

// SessionPhase tracks where a game session is in its round lifecycle.
type SessionPhase int

const (
	PhaseAwaitingRound SessionPhase = iota
	PhaseRoundActive
	PhaseRoundResolved
	PhaseGameOver
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseAwaitingRound:
		return "awaitingRound"
	case PhaseRoundActive:
		return "roundActive"
	case PhaseRoundResolved:
		return "roundResolved"
	case PhaseGameOver:
		return "gameOver"
	}
	return "unknown"
}

// GameSummary is emitted exactly once when a session reaches GameOver.
type GameSummary struct {
	UserID      string   `json:"userId"`
	Category    Category `json:"category"`
	RoundsTotal int      `json:"roundsTotal"`
	Score       int      `json:"score"`
	Stars       [3]bool  `json:"stars"`
}

// StarsEarned counts the unlocked star flags.
func (s GameSummary) StarsEarned() int {
	earned := 0
	for _, flag := range s.Stars {
		if flag {
			earned++
		}
	}
	return earned
}

// SpinResult is the immutable outcome of one reward wheel spin.
type SpinResult struct {
	SegmentIndex int  `json:"segmentIndex"`
	PrizeValue   int  `json:"prizeValue"`
	FreeSpin     bool `json:"freeSpin"`
}

// UserProfile is the remote user record. The core reads and writes it but
// never owns its lifecycle; a missing record loads as the zero profile
// (new-user bootstrap).
type UserProfile struct {
	ID                     string    `json:"id"`
	Username               string    `json:"username"`
	Points                 int       `json:"points"`
	Stars                  int       `json:"stars"`
	LastFreeSpin           time.Time `json:"lastFreeSpin"`
	UnlockedCategories     []string  `json:"unlockedCategories"`
	UnlockedLevels         []string  `json:"unlockedLevels"`
	UnlockedQuestionCounts []int     `json:"unlockedQuestionCounts"`
}

// HasCategory reports whether the profile has unlocked the category.
// The default category is always playable.
func (p UserProfile) HasCategory(c Category) bool {
	if c == DefaultCategory {
		return true
	}
	for _, name := range p.UnlockedCategories {
		if name == string(c) {
			return true
		}
	}
	return false
}

// ScoreEntry is one append-only score-history fact for a user.
type ScoreEntry struct {
	UserID    string    `json:"userId"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// LeaderboardRow is a derived per-user total, recomputed each aggregation pass.
type LeaderboardRow struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	TotalPoints int    `json:"totalPoints"`
}
