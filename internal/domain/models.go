package domain

// Default scoring rules.
const (
	PointsPerCorrectAnswer = 10
	PointsToLevelUp        = 100
)

// Question is a multiple-choice item. CorrectAnswer is always one of Options.
type Question struct {
	Text          string   `json:"questionText" validate:"required"`
	Options       []string `json:"options" validate:"min=4,max=5,unique,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Activity is one curriculum topic's quiz unit.
type Activity struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Objective      string         `json:"objective"`
	Content        string         `json:"content"`
	Questions      []Question     `json:"questions"`
	Completed      bool           `json:"completed"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	UserAnswers    map[int]string `json:"userAnswers"`
}

// CorrectCount counts answers that match the question's correct answer.
func (a Activity) CorrectCount() int {
	n := 0
	for i, q := range a.Questions {
		if ans, ok := a.UserAnswers[i]; ok && ans == q.CorrectAnswer {
			n++
		}
	}
	return n
}

// User is the locally persisted learner profile.
type User struct {
	Name           string `json:"name"`
	Course         string `json:"course"`
	ProfilePicture string `json:"profilePic,omitempty"`
	Points         int    `json:"points"`
	Level          int    `json:"level"`
}

// AddPoints credits points and recomputes the level.
func (u *User) AddPoints(points, pointsToLevelUp int) {
	u.Points += points
	u.Level = LevelFor(u.Points, pointsToLevelUp)
}

// LevelFor returns floor(points / pointsToLevelUp) + 1.
func LevelFor(points, pointsToLevelUp int) int {
	if pointsToLevelUp <= 0 {
		pointsToLevelUp = PointsToLevelUp
	}
	if points < 0 {
		points = 0
	}
	return points/pointsToLevelUp + 1
}

// Progress is the fraction of completed activities, 0 when there are none.
func Progress(activities []Activity) float64 {
	if len(activities) == 0 {
		return 0
	}
	done := 0
	for _, a := range activities {
		if a.Completed {
			done++
		}
	}
	return float64(done) / float64(len(activities))
}

// AnswerOutcome summarizes the effect of recording an answer.
type AnswerOutcome struct {
	Index         int    `json:"index"`
	Answer        string `json:"answer"`
	Accepted      bool   `json:"accepted"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
	Awarded       int    `json:"awarded"`
	Score         int    `json:"score"`
}
