package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockboard/iv/internal/models"
)

func TestBuildEvalPrompt(t *testing.T) {
	cfg := models.SessionConfig{
		Category:   models.CategoryTechnical,
		Role:       "python_developer",
		Difficulty: models.DifficultyMedium,
	}

	system, user := buildEvalPrompt("What is a closure?", "A function plus its environment.", cfg)

	assert.Contains(t, system, `"score"`)
	assert.Contains(t, system, `"verdict"`)
	assert.Contains(t, system, `"feedback"`)
	assert.Contains(t, system, "Python Developer")
	assert.Contains(t, user, "What is a closure?")
	assert.Contains(t, user, "A function plus its environment.")
}

func TestParseEvaluation(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		ev, err := parseEvaluation(`{"score": 8, "verdict": "correct", "feedback": "Well done. Let's move to the next question."}`)
		require.NoError(t, err)
		assert.Equal(t, 8, ev.Score)
		assert.Equal(t, models.VerdictCorrect, ev.Verdict)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		ev, err := parseEvaluation("```json\n{\"score\": 4, \"verdict\": \"partial\", \"feedback\": \"Halfway there.\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, models.VerdictPartial, ev.Verdict)
	})

	t.Run("JSON wrapped in prose", func(t *testing.T) {
		ev, err := parseEvaluation(`Sure! Here's the evaluation: {"score": 2, "verdict": "incorrect", "feedback": "Not quite."} Hope that helps.`)
		require.NoError(t, err)
		assert.Equal(t, 2, ev.Score)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := parseEvaluation("the answer was fine I guess")
		assert.Error(t, err)
	})

	t.Run("score out of range", func(t *testing.T) {
		_, err := parseEvaluation(`{"score": 14, "verdict": "correct", "feedback": "x"}`)
		assert.Error(t, err)
	})

	t.Run("unknown verdict", func(t *testing.T) {
		_, err := parseEvaluation(`{"score": 5, "verdict": "meh", "feedback": "x"}`)
		assert.Error(t, err)
	})
}

func TestNeutral(t *testing.T) {
	ev := Neutral()
	assert.Equal(t, 5, ev.Score)
	assert.Equal(t, models.VerdictPartial, ev.Verdict)
	assert.NotEmpty(t, ev.Feedback)
}

func TestBuildHintPrompt(t *testing.T) {
	cfg := models.SessionConfig{
		Category:   models.CategoryNonTechnical,
		Role:       "hr_manager",
		Difficulty: models.DifficultyEasy,
	}

	system, user := buildHintPrompt("How do you resolve team conflicts?", cfg)

	assert.Contains(t, system, "without revealing the answer")
	assert.Contains(t, user, "How do you resolve team conflicts?")
	assert.Contains(t, user, "HR Manager")
	assert.Contains(t, user, "non_technical")
}
