// Package question produces the ordered question list for a session.
package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/mockboard/iv/internal/llm"
	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/roles"
)

// Generator produces an ordered sequence of question strings for a
// session. Implementations may return fewer than n questions; callers
// must tolerate that. An error means the caller should fall back to
// Fallback rather than fail the session.
type Generator interface {
	Generate(ctx context.Context, cfg models.SessionConfig, n int) ([]string, error)
}

// LLMGenerator generates questions through the Anthropic API.
type LLMGenerator struct {
	client *llm.Client
}

// NewLLMGenerator creates a generator backed by the given LLM client.
func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// buildPrompt constructs the system and user prompts for question generation.
func buildPrompt(cfg models.SessionConfig, n int) (system string, user string) {
	system = fmt.Sprintf(`You are a professional interviewer preparing a %s skills assessment for a %s position at %s difficulty.

Rules:
- Return only the questions, numbered 1-%d, one per line
- Questions must be clear, specific, and answerable in free text
- No preamble, no explanation, no markdown fencing`,
		cfg.Category, roles.DisplayName(cfg.Role), cfg.Difficulty, n)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d interview questions for a %s position at %s difficulty level.\n",
		n, roles.DisplayName(cfg.Role), cfg.Difficulty)
	fmt.Fprintf(&sb, "Focus on %s skills.\n", cfg.Category)
	user = sb.String()
	return
}

// Generate asks the LLM for n questions and parses the numbered response.
func (g *LLMGenerator) Generate(ctx context.Context, cfg models.SessionConfig, n int) ([]string, error) {
	system, user := buildPrompt(cfg, n)

	text, err := g.client.Message(ctx, system, user, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions := parseNumbered(llm.StripFence(text), n)
	if len(questions) == 0 {
		return nil, fmt.Errorf("generate questions: no questions in response")
	}
	return questions, nil
}

// parseNumbered extracts up to max questions from a numbered-list response.
// Accepts "1. ...", "1) ..." and "Q1: ..." line shapes.
func parseNumbered(response string, max int) []string {
	var questions []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] != 'Q' && (line[0] < '0' || line[0] > '9') {
			continue
		}

		q := line
		if _, rest, ok := strings.Cut(line, ". "); ok {
			q = rest
		} else if _, rest, ok := strings.Cut(line, ") "); ok {
			q = rest
		} else if _, rest, ok := strings.Cut(line, ": "); ok {
			q = rest
		}

		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
		if len(questions) == max {
			break
		}
	}
	return questions
}
