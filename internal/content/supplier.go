package content

import (
	"context"
	"errors"
	"fmt"

	"eduquest-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Request asks for a question set about one curriculum topic.
type Request struct {
	ActivityID    string
	Topic         string
	Objective     string
	Preface       string
	OptionCount   int
	QuestionCount int
	FixtureSet    string
}

// RequestFor derives the request for a catalog activity.
func RequestFor(def domain.ActivityDefinition) Request {
	return Request{
		ActivityID:    def.ID,
		Topic:         def.Title,
		Objective:     def.Objective,
		Preface:       def.PromptPreface,
		OptionCount:   def.OptionCount,
		QuestionCount: def.QuestionCount,
		FixtureSet:    def.FixtureSet,
	}
}

// Supplier produces an ordered question list for a topic.
type Supplier interface {
	Questions(ctx context.Context, req Request) ([]domain.Question, error)
}

var validate = validator.New()

// Validate checks a question list against the question schema: 4 or 5 distinct
// options and a correct answer taken from them.
func Validate(questions []domain.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("empty question list: %w", domain.ErrMalformedContent)
	}
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return fmt.Errorf("question %d: field %s failed %q: %w", i, verrs[0].Field(), verrs[0].Tag(), domain.ErrMalformedContent)
			}
			return fmt.Errorf("question %d: %v: %w", i, err, domain.ErrMalformedContent)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return fmt.Errorf("question %d: correct answer not among options: %w", i, domain.ErrMalformedContent)
		}
	}
	return nil
}
