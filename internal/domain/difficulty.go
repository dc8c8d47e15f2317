package domain

import "time"

// Difficulty selects how fast rounds run and how much a correct answer pays.
// Harder tiers run shorter rounds and award more points.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

type difficultyParams struct {
	name     string
	points   int
	duration time.Duration
}

var difficultyTable = map[Difficulty]difficultyParams{
	DifficultyEasy:   {name: "easy", points: 10, duration: 15 * time.Second},
	DifficultyMedium: {name: "medium", points: 20, duration: 10 * time.Second},
	DifficultyHard:   {name: "hard", points: 30, duration: 5 * time.Second},
}

func (d Difficulty) String() string {
	if params, ok := difficultyTable[d]; ok {
		return params.name
	}
	return "unknown"
}

// PointsPerAnswer is the score awarded for one correct answer at this tier.
func (d Difficulty) PointsPerAnswer() int {
	return difficultyTable[d].points
}

// RoundDuration is the answer window for one round at this tier.
func (d Difficulty) RoundDuration() time.Duration {
	return difficultyTable[d].duration
}

// ParseDifficulty maps a tier name to its Difficulty.
func ParseDifficulty(name string) (Difficulty, error) {
	for d, params := range difficultyTable {
		if params.name == name {
			return d, nil
		}
	}
	return DifficultyEasy, ErrUnknownDifficulty
}
