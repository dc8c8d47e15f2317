package docstore

import (
	"context"

	"emoji-quiz-service/internal/domain"
)

// QuestionStore loads a category's question documents. It is the backing
// loader the in-memory and Redis question caches sit in front of.
type QuestionStore struct {
	store DocumentStore
}

func NewQuestionStore(store DocumentStore) *QuestionStore {
	return &QuestionStore{store: store}
}

func (s *QuestionStore) LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	records, err := s.store.FetchAll(ctx, questionsCollection(category))
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(records))
	for _, record := range records {
		questions = append(questions, domain.Question{
			ID:       record.ID,
			Category: string(category),
			Prompt:   stringField(record.Fields, "prompt"),
			Answer:   stringField(record.Fields, "answer"),
		})
	}
	return questions, nil
}

// SeedQuestions writes question documents for a category, used by demo
// seeding and tests.
func (s *QuestionStore) SeedQuestions(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		err := s.store.SetFields(ctx, questionsCollection(domain.Category(q.Category)), q.ID, map[string]any{
			"prompt": q.Prompt,
			"answer": q.Answer,
		}, false)
		if err != nil {
			return err
		}
	}
	return nil
}

func questionsCollection(category domain.Category) string {
	return "categories/" + string(category) + "/questions"
}
