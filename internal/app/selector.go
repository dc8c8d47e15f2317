package app

import (
	"math/rand"
	"time"

	"emoji-quiz-service/internal/domain"
)

// maxSelectionAttempts bounds the reshuffle loop so pathological pools
// (many duplicate answers) surface ErrSelectionExhausted instead of spinning.
const maxSelectionAttempts = 10

// RoundSelector picks one question and three unique wrong answers from a
// candidate pool, producing a shuffled four-option set.
type RoundSelector struct {
	rnd *rand.Rand
}

func NewRoundSelector(rnd *rand.Rand) *RoundSelector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RoundSelector{rnd: rnd}
}

// SelectRound returns a RoundOptions with exactly four distinct options
// containing the correct answer exactly once. A collision between a picked
// wrong answer and the correct one discards the whole pick and reshuffles
// the same in-memory pool; no re-fetch happens on retry.
func (s *RoundSelector) SelectRound(candidates []domain.Question) (domain.RoundOptions, error) {
	if countDistinctAnswers(candidates) < 4 {
		return domain.RoundOptions{}, domain.ErrInsufficientData
	}

	pool := make([]domain.Question, len(candidates))
	copy(pool, candidates)

	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		s.rnd.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		question := pool[0]
		wrong := pickWrongAnswers(pool[1:])
		if !validOptionSet(question.Answer, wrong) {
			continue
		}

		options := append([]string{question.Answer}, wrong...)
		s.rnd.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		return domain.RoundOptions{Question: question, Options: options}, nil
	}
	return domain.RoundOptions{}, domain.ErrSelectionExhausted
}

// pickWrongAnswers walks the shuffled remainder collecting up to three
// answers that are distinct among themselves.
func pickWrongAnswers(rest []domain.Question) []string {
	wrong := make([]string, 0, 3)
	for _, q := range rest {
		if containsText(wrong, q.Answer) {
			continue
		}
		wrong = append(wrong, q.Answer)
		if len(wrong) == 3 {
			break
		}
	}
	return wrong
}

// validOptionSet rejects picks where a wrong answer duplicates the correct
// one, or where fewer than four distinct options remain.
func validOptionSet(correct string, wrong []string) bool {
	return len(wrong) == 3 && !containsText(wrong, correct)
}

func containsText(texts []string, text string) bool {
	for _, t := range texts {
		if t == text {
			return true
		}
	}
	return false
}

func countDistinctAnswers(candidates []domain.Question) int {
	seen := make(map[string]struct{}, len(candidates))
	for _, q := range candidates {
		seen[q.Answer] = struct{}{}
	}
	return len(seen)
}
