// Package evaluate judges free-text answers and produces hints.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mockboard/iv/internal/llm"
	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/roles"
)

// Evaluator scores a question/answer pair and produces hints. Errors are
// recoverable: callers substitute Neutral() or FallbackHint and continue
// the session.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string, cfg models.SessionConfig) (models.Evaluation, error)
	Hint(ctx context.Context, question string, cfg models.SessionConfig) (string, error)
}

// Neutral returns the documented fallback judgement used when upstream
// evaluation fails or its output cannot be parsed.
func Neutral() models.Evaluation {
	return models.Evaluation{
		Score:    5,
		Verdict:  models.VerdictPartial,
		Feedback: "Could not parse evaluation, but the answer was submitted.",
	}
}

// FallbackHint is the generic hint used when hint generation fails.
const FallbackHint = "Think about the core concept this question is testing. Break it down into smaller parts and try a step-by-step approach."

// LLMEvaluator evaluates answers through the Anthropic API.
type LLMEvaluator struct {
	client *llm.Client
}

// NewLLMEvaluator creates an evaluator backed by the given LLM client.
func NewLLMEvaluator(client *llm.Client) *LLMEvaluator {
	return &LLMEvaluator{client: client}
}

// buildEvalPrompt constructs the system and user prompts for answer evaluation.
func buildEvalPrompt(question, answer string, cfg models.SessionConfig) (system string, user string) {
	system = fmt.Sprintf(`You are evaluating interview answers for a %s position at %s difficulty. Return ONLY a JSON object with these fields:
- "score": integer 1-10
- "verdict": one of "correct", "partial", "incorrect"
- "feedback": brief constructive feedback for the candidate

Rules:
- Be professional, constructive, and encouraging
- If the answer is correct and complete, say so and end the feedback with "Let's move to the next question."
- If the answer is partially correct, acknowledge what is right and ask for the missing piece
- If the answer is incorrect, give a gentle nudge toward the right direction and invite another try
- Return valid JSON only, no markdown fencing or explanation`,
		roles.DisplayName(cfg.Role), cfg.Difficulty)

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nCandidate's answer: ")
	sb.WriteString(answer)
	sb.WriteString("\n")
	user = sb.String()
	return
}

// Evaluate scores one answer. A parse failure on upstream output is
// logged and surfaced as an error so callers take the neutral fallback.
func (e *LLMEvaluator) Evaluate(ctx context.Context, question, answer string, cfg models.SessionConfig) (models.Evaluation, error) {
	system, user := buildEvalPrompt(question, answer, cfg)

	text, err := e.client.Message(ctx, system, user, 1024)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}

	ev, err := parseEvaluation(text)
	if err != nil {
		slog.Warn("unparsable evaluation from upstream", "error", err)
		return models.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	return ev, nil
}

// parseEvaluation decodes the model's JSON judgement, tolerating fencing
// and surrounding prose.
func parseEvaluation(text string) (models.Evaluation, error) {
	text = llm.StripFence(text)

	// LLMs sometimes wrap the JSON in prose; take the outermost braces.
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var ev models.Evaluation
	if err := json.Unmarshal([]byte(text), &ev); err != nil {
		return models.Evaluation{}, fmt.Errorf("parse evaluation JSON: %w", err)
	}

	if ev.Score < 1 || ev.Score > 10 {
		return models.Evaluation{}, fmt.Errorf("evaluation score out of range: %d", ev.Score)
	}
	switch ev.Verdict {
	case models.VerdictCorrect, models.VerdictPartial, models.VerdictIncorrect:
	default:
		return models.Evaluation{}, fmt.Errorf("unknown verdict: %q", ev.Verdict)
	}
	return ev, nil
}

// buildHintPrompt constructs the system and user prompts for hint generation.
func buildHintPrompt(question string, cfg models.SessionConfig) (system string, user string) {
	system = `You help interview candidates who are stuck. Give a short, guiding hint that points at the key concept or approach without revealing the answer. Be encouraging. Respond with the hint text only.`

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\nRole: ")
	sb.WriteString(roles.DisplayName(cfg.Role))
	sb.WriteString("\nDifficulty: ")
	sb.WriteString(string(cfg.Difficulty))
	sb.WriteString("\nCategory: ")
	sb.WriteString(string(cfg.Category))
	sb.WriteString("\n")
	user = sb.String()
	return
}

// Hint produces a guidance string for the current question.
func (e *LLMEvaluator) Hint(ctx context.Context, question string, cfg models.SessionConfig) (string, error) {
	system, user := buildHintPrompt(question, cfg)

	text, err := e.client.Message(ctx, system, user, 512)
	if err != nil {
		return "", fmt.Errorf("generate hint: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// buildNarrativePrompt constructs the prompts for the overall report narrative.
func buildNarrativePrompt(transcript string, cfg models.SessionConfig) (system string, user string) {
	system = `You write the closing assessment of an interview report. Given the per-question transcript, summarize overall performance: strengths, weaknesses, and concrete areas for improvement. Keep it under 200 words, plain text.`

	var sb strings.Builder
	fmt.Fprintf(&sb, "Position: %s (%s, %s difficulty)\n\nTranscript:\n%s",
		roles.DisplayName(cfg.Role), cfg.Category, cfg.Difficulty, transcript)
	user = sb.String()
	return
}

// Narrate produces the overall qualitative evaluation for a report.
func (e *LLMEvaluator) Narrate(ctx context.Context, transcript string, cfg models.SessionConfig) (string, error) {
	system, user := buildNarrativePrompt(transcript, cfg)

	text, err := e.client.Message(ctx, system, user, 1024)
	if err != nil {
		return "", fmt.Errorf("generate report narrative: %w", err)
	}
	return strings.TrimSpace(text), nil
}
