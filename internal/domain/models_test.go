package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0, 100))
	assert.Equal(t, 1, LevelFor(99, 100))
	assert.Equal(t, 2, LevelFor(100, 100))
	assert.Equal(t, 2, LevelFor(105, 100))
	assert.Equal(t, 1, LevelFor(-5, 100))
	assert.Equal(t, 2, LevelFor(100, 0))
}

func TestAddPointsCrossesLevel(t *testing.T) {
	u := User{Name: "Ana", Course: "4°AHC", Points: 95, Level: 1}
	u.AddPoints(10, 100)
	assert.Equal(t, 105, u.Points)
	assert.Equal(t, 2, u.Level)
}

func TestCorrectCount(t *testing.T) {
	a := Activity{
		Questions: []Question{
			{Text: "q1", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "B"},
			{Text: "q2", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "C"},
			{Text: "q3", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "D"},
		},
		UserAnswers: map[int]string{0: "B", 1: "A"},
	}
	assert.Equal(t, 1, a.CorrectCount())
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(nil))
	acts := SeedActivities()
	assert.Equal(t, 0.0, Progress(acts))
	acts[0].Completed = true
	assert.Equal(t, 0.5, Progress(acts))
}

func TestSeedActivitiesMatchCatalog(t *testing.T) {
	acts := SeedActivities()
	assert.Len(t, acts, len(Curriculum))
	for _, a := range acts {
		def, ok := DefinitionFor(a.ID)
		assert.True(t, ok)
		assert.Equal(t, def.Title, a.Title)
		assert.False(t, a.Completed)
		assert.Empty(t, a.Questions)
		assert.NotNil(t, a.UserAnswers)
	}
	_, ok := DefinitionFor("missing")
	assert.False(t, ok)
}
