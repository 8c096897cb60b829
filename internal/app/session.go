package app

import (
	"fmt"

	"eduquest-service/internal/domain"
)

// State is the position of a Session in its lifecycle.
type State string

const (
	StateLoading     State = "loading"
	StateInProgress  State = "in_progress"
	StateResults     State = "results"
	StateNoQuestions State = "no_questions"
)

// Snapshot is a read-only view of a session, recomputed on every transition.
type Snapshot struct {
	ActivityID string        `json:"activityId"`
	State      State         `json:"state"`
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Answered   bool          `json:"answered"`
	Score      int           `json:"score"`
	Correct    int           `json:"correct"`
	Progress   float64       `json:"progress"`
	Question   *QuestionView `json:"question,omitempty"`
}

// QuestionView is the current question without its answer key.
type QuestionView struct {
	Text    string   `json:"questionText"`
	Options []string `json:"options"`
}

// Session drives one pass through an activity's questions. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	activity         domain.Activity
	questions        []domain.Question
	pointsPerCorrect int

	state    State
	index    int
	answered bool
	score    int
	answers  map[int]string
}

// NewSession starts in Loading when the activity has no stored questions,
// otherwise directly on the first question.
func NewSession(activity domain.Activity, pointsPerCorrect int) *Session {
	if pointsPerCorrect <= 0 {
		pointsPerCorrect = domain.PointsPerCorrectAnswer
	}
	s := &Session{
		activity:         activity,
		pointsPerCorrect: pointsPerCorrect,
		state:            StateLoading,
		answers:          make(map[int]string),
	}
	if len(activity.Questions) > 0 {
		s.questions = append([]domain.Question(nil), activity.Questions...)
		s.state = StateInProgress
	}
	return s
}

// SupplyQuestions moves a Loading session to the first question. An empty list
// leaves the session in the terminal NoQuestions state and returns ErrNoQuestions.
func (s *Session) SupplyQuestions(questions []domain.Question) (Snapshot, error) {
	if s.state != StateLoading {
		return s.Snapshot(), fmt.Errorf("supply questions in %s: %w", s.state, domain.ErrInvalidState)
	}
	if len(questions) == 0 {
		s.state = StateNoQuestions
		return s.Snapshot(), domain.ErrNoQuestions
	}
	s.questions = append([]domain.Question(nil), questions...)
	s.state = StateInProgress
	s.index = 0
	s.answered = false
	return s.Snapshot(), nil
}

// Answer records the answer for the current question. A second call for the
// same question is a no-op that reports the first answer with Accepted=false.
// Options outside the question's list are recorded but never score.
func (s *Session) Answer(option string) (domain.AnswerOutcome, error) {
	if s.state != StateInProgress {
		return domain.AnswerOutcome{}, fmt.Errorf("answer in %s: %w", s.state, domain.ErrInvalidState)
	}
	q := s.questions[s.index]
	if s.answered {
		first := s.answers[s.index]
		return domain.AnswerOutcome{
			Index:         s.index,
			Answer:        first,
			Accepted:      false,
			Correct:       first == q.CorrectAnswer && q.HasOption(first),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Score:         s.score,
		}, nil
	}

	s.answers[s.index] = option
	s.answered = true

	correct := q.HasOption(option) && option == q.CorrectAnswer
	awarded := 0
	if correct {
		awarded = s.pointsPerCorrect
		s.score += awarded
	}
	return domain.AnswerOutcome{
		Index:         s.index,
		Answer:        option,
		Accepted:      true,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Awarded:       awarded,
		Score:         s.score,
	}, nil
}

// Advance moves to the next question, or to Results from the last one.
func (s *Session) Advance() (Snapshot, error) {
	if s.state != StateInProgress {
		return s.Snapshot(), fmt.Errorf("advance in %s: %w", s.state, domain.ErrInvalidState)
	}
	if !s.answered {
		return s.Snapshot(), domain.ErrNotAnswered
	}
	if s.index+1 < len(s.questions) {
		s.index++
		s.answered = false
	} else {
		s.state = StateResults
	}
	return s.Snapshot(), nil
}

// Result returns the finished-activity record. Only valid in Results.
func (s *Session) Result() (domain.Activity, error) {
	if s.state != StateResults {
		return domain.Activity{}, fmt.Errorf("result in %s: %w", s.state, domain.ErrInvalidState)
	}
	out := s.activity
	out.Questions = append([]domain.Question(nil), s.questions...)
	out.Completed = true
	out.Score = s.score
	out.TotalQuestions = len(s.questions)
	out.UserAnswers = make(map[int]string, len(s.answers))
	for i, a := range s.answers {
		out.UserAnswers[i] = a
	}
	return out, nil
}

// Progress is (index+1)/N clamped to [0,1]; 0 outside InProgress/Results.
func (s *Session) Progress() float64 {
	n := len(s.questions)
	switch s.state {
	case StateInProgress:
		p := float64(s.index+1) / float64(n)
		if p > 1 {
			return 1
		}
		return p
	case StateResults:
		return 1
	default:
		return 0
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) ActivityID() string { return s.activity.ID }

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ActivityID: s.activity.ID,
		State:      s.state,
		Index:      s.index,
		Total:      len(s.questions),
		Answered:   s.answered,
		Score:      s.score,
		Correct:    s.score / s.pointsPerCorrect,
		Progress:   s.Progress(),
	}
	if s.state == StateInProgress {
		q := s.questions[s.index]
		snap.Question = &QuestionView{Text: q.Text, Options: q.Options}
	}
	return snap
}
