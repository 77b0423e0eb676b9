// Package roles holds the category/role/difficulty catalog used to
// validate and normalize session parameters.
package roles

import (
	"fmt"
	"strings"

	"github.com/mockboard/iv/internal/models"
)

// Catalog maps each category to its known role identifiers.
var Catalog = map[models.Category][]string{
	models.CategoryTechnical: {
		"python_developer",
		"data_scientist",
		"ai_ml_engineer",
		"full_stack_developer",
		"devops_engineer",
		"software_architect",
	},
	models.CategoryNonTechnical: {
		"hr_manager",
		"project_manager",
		"business_analyst",
		"product_manager",
		"marketing_manager",
		"sales_executive",
	},
}

// QuestionOptions and DurationOptions are the values presented by UIs.
var (
	QuestionOptions = []int{5, 10, 15, 20}
	DurationOptions = []int{5, 10, 30, 60}
)

// Preset holds per-difficulty defaults applied when the caller passes zeros.
type Preset struct {
	NumQuestions    int
	DurationMinutes int
}

// Presets maps each difficulty to its default session shape.
var Presets = map[models.Difficulty]Preset{
	models.DifficultyEasy:   {NumQuestions: 5, DurationMinutes: 15},
	models.DifficultyMedium: {NumQuestions: 8, DurationMinutes: 25},
	models.DifficultyHard:   {NumQuestions: 12, DurationMinutes: 40},
}

// difficultyAliases maps alternate deployment vocabularies onto the
// canonical easy/medium/hard set.
var difficultyAliases = map[string]models.Difficulty{
	"easy":         models.DifficultyEasy,
	"beginner":     models.DifficultyEasy,
	"medium":       models.DifficultyMedium,
	"intermediate": models.DifficultyMedium,
	"hard":         models.DifficultyHard,
	"advanced":     models.DifficultyHard,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (models.Category, error) {
	c := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Catalog[c]; !ok {
		return "", fmt.Errorf("unknown category: %q (use: technical, non_technical)", s)
	}
	return c, nil
}

// ParseDifficulty normalizes a difficulty string, accepting the
// beginner/intermediate/advanced aliases.
func ParseDifficulty(s string) (models.Difficulty, error) {
	d, ok := difficultyAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown difficulty: %q (use: easy, medium, hard)", s)
	}
	return d, nil
}

// ValidRole reports whether role belongs to the category's role set.
func ValidRole(category models.Category, role string) bool {
	for _, r := range Catalog[category] {
		if r == role {
			return true
		}
	}
	return false
}

// displayNames overrides the generic underscore-to-title rendering.
var displayNames = map[string]string{
	"hr_manager":     "HR Manager",
	"ai_ml_engineer": "AI/ML Engineer",
	"devops_engineer": "DevOps Engineer",
}

// DisplayName renders a role identifier for humans ("python_developer"
// becomes "Python Developer").
func DisplayName(role string) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	words := strings.Split(role, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ApplyPresets fills zero-valued question count and duration from the
// difficulty presets and returns the completed config.
func ApplyPresets(cfg models.SessionConfig) models.SessionConfig {
	preset, ok := Presets[cfg.Difficulty]
	if !ok {
		return cfg
	}
	if cfg.NumQuestions <= 0 {
		cfg.NumQuestions = preset.NumQuestions
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = preset.DurationMinutes
	}
	return cfg
}

// Validate checks a fully populated session config.
func Validate(cfg models.SessionConfig) error {
	if _, ok := Catalog[cfg.Category]; !ok {
		return fmt.Errorf("unknown category: %q", cfg.Category)
	}
	if cfg.Role == "" {
		return fmt.Errorf("role is required")
	}
	if _, ok := Presets[cfg.Difficulty]; !ok {
		return fmt.Errorf("unknown difficulty: %q", cfg.Difficulty)
	}
	if cfg.NumQuestions <= 0 {
		return fmt.Errorf("num_questions must be positive, got %d", cfg.NumQuestions)
	}
	if cfg.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", cfg.DurationMinutes)
	}
	return nil
}
