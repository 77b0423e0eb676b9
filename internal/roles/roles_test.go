package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockboard/iv/internal/models"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Technical ")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTechnical, c)

	_, err = ParseCategory("musical")
	assert.Error(t, err)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want models.Difficulty
	}{
		{"easy", models.DifficultyEasy},
		{"BEGINNER", models.DifficultyEasy},
		{"medium", models.DifficultyMedium},
		{"intermediate", models.DifficultyMedium},
		{"hard", models.DifficultyHard},
		{"advanced", models.DifficultyHard},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDifficulty(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}

	_, err := ParseDifficulty("nightmare")
	assert.Error(t, err)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(models.CategoryTechnical, "python_developer"))
	assert.False(t, ValidRole(models.CategoryTechnical, "hr_manager"))
	assert.True(t, ValidRole(models.CategoryNonTechnical, "hr_manager"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Python Developer", DisplayName("python_developer"))
	assert.Equal(t, "HR Manager", DisplayName("hr_manager"))
	assert.Equal(t, "AI/ML Engineer", DisplayName("ai_ml_engineer"))
	assert.Equal(t, "DevOps Engineer", DisplayName("devops_engineer"))
	assert.Equal(t, "Non Technical", DisplayName("non_technical"))
}

func TestApplyPresets(t *testing.T) {
	cfg := models.SessionConfig{Difficulty: models.DifficultyHard}
	cfg = ApplyPresets(cfg)
	assert.Equal(t, 12, cfg.NumQuestions)
	assert.Equal(t, 40, cfg.DurationMinutes)

	// Explicit values win over presets.
	cfg = models.SessionConfig{Difficulty: models.DifficultyHard, NumQuestions: 3, DurationMinutes: 5}
	cfg = ApplyPresets(cfg)
	assert.Equal(t, 3, cfg.NumQuestions)
	assert.Equal(t, 5, cfg.DurationMinutes)
}

func TestValidate(t *testing.T) {
	valid := models.SessionConfig{
		Category:        models.CategoryTechnical,
		Role:            "python_developer",
		Difficulty:      models.DifficultyEasy,
		NumQuestions:    5,
		DurationMinutes: 10,
	}
	assert.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*models.SessionConfig)
	}{
		{"bad category", func(c *models.SessionConfig) { c.Category = "quantum" }},
		{"empty role", func(c *models.SessionConfig) { c.Role = "" }},
		{"bad difficulty", func(c *models.SessionConfig) { c.Difficulty = "brutal" }},
		{"zero questions", func(c *models.SessionConfig) { c.NumQuestions = 0 }},
		{"negative duration", func(c *models.SessionConfig) { c.DurationMinutes = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
