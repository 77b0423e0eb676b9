// Package report aggregates a session's answer log into the final
// performance report.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/roles"
)

// Stats is the immutable input to report generation, captured from a
// session at (or after) its terminal transition.
type Stats struct {
	Config         models.SessionConfig
	TotalQuestions int         // len(questions), including unreached tail
	Attempted      int         // questions with a terminal disposition (the cursor)
	Attempts       map[int]int // question index -> uncertain-attempt count
	HintsUsed      int
	Elapsed        time.Duration
}

// Builder computes summaries and reports from session stats.
type Builder struct{}

// NewBuilder returns a report Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Classify splits the attempted questions into answered and skipped.
// The canonical rule: two or more recorded attempts means the question
// was skipped after uncertainty; one attempt, or no attempts entry at
// all, means it was answered. Unreached questions are not counted.
func (b *Builder) Classify(attempts map[int]int, attempted int) (answered, skipped int) {
	for idx := 0; idx < attempted; idx++ {
		if attempts[idx] >= 2 {
			skipped++
		} else {
			answered++
		}
	}
	return answered, skipped
}

// SuccessRate returns answered/attempted as a percentage, 0 when nothing
// was attempted.
func (b *Builder) SuccessRate(answered, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(answered) / float64(attempted) * 100
}

// Summary renders the human-readable closing summary. It is a pure
// function of its input: the same stats always yield the same text.
func (b *Builder) Summary(s Stats) string {
	answered, skipped := b.Classify(s.Attempts, s.Attempted)
	rate := b.SuccessRate(answered, s.Attempted)
	role := roles.DisplayName(s.Config.Role)

	var sb strings.Builder
	sb.WriteString("Interview Completed\n\n")
	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "- Role: %s\n", role)
	fmt.Fprintf(&sb, "- Total Questions: %d\n", s.TotalQuestions)
	fmt.Fprintf(&sb, "- Questions Attempted: %d\n", s.Attempted)
	fmt.Fprintf(&sb, "- Questions Answered: %d\n", answered)
	fmt.Fprintf(&sb, "- Questions Skipped: %d\n", skipped)
	fmt.Fprintf(&sb, "- Hints Used: %d\n", s.HintsUsed)
	fmt.Fprintf(&sb, "- Time Taken: %d minutes %d seconds\n",
		int(s.Elapsed.Seconds())/60, int(s.Elapsed.Seconds())%60)
	fmt.Fprintf(&sb, "- Difficulty Level: %s\n", roles.DisplayName(string(s.Config.Difficulty)))

	sb.WriteString("\nPerformance Analysis:\n")
	switch {
	case rate >= 80:
		sb.WriteString("- Excellent! You successfully answered most questions you attempted.")
	case rate >= 60:
		sb.WriteString("- Good effort! You showed solid understanding in most areas.")
	case rate >= 40:
		sb.WriteString("- Making progress! You demonstrated knowledge in several areas.")
	default:
		sb.WriteString("- Keep learning! This interview identified areas for development.")
	}

	if s.HintsUsed > 0 {
		fmt.Fprintf(&sb, "\n- You requested %d hint(s)!", s.HintsUsed)
	}
	if skipped > 0 {
		fmt.Fprintf(&sb, "\n- %d question(s) were skipped after uncertainty - consider reviewing these topics.", skipped)
	}

	sb.WriteString("\n\nRecommendations:")
	if rate < 60 {
		fmt.Fprintf(&sb, "\n- Focus on strengthening %s fundamentals", role)
		fmt.Fprintf(&sb, "\n- Practice %s level questions in this area", s.Config.Difficulty)
	}
	if skipped > s.Attempted/2 {
		fmt.Fprintf(&sb, "\n- Review core concepts for %s", role)
		sb.WriteString("\n- Consider starting with an easier difficulty level next time")
	}
	if s.HintsUsed == 0 && rate > 80 {
		sb.WriteString("\n- You're ready for a higher difficulty level!")
	}

	sb.WriteString("\n\nThank you for participating! Your responses help you identify strengths and areas for growth.")
	return sb.String()
}

// Build assembles the full structured report for a finished session.
// The overall narrative may be empty; a local fallback line is used so
// the field is never blank.
func (b *Builder) Build(sessionID string, s Stats, records []models.AnswerRecord, overall string, generatedAt time.Time) *models.Report {
	answered, skipped := b.Classify(s.Attempts, s.Attempted)

	if overall == "" {
		overall = fmt.Sprintf("Answered %d of %d attempted questions (%.0f%% success rate).",
			answered, s.Attempted, b.SuccessRate(answered, s.Attempted))
	}

	questions := make([]models.AnswerRecord, len(records))
	copy(questions, records)

	return &models.Report{
		SessionID: sessionID,
		Info: models.SessionInfo{
			Role:               s.Config.Role,
			Category:           s.Config.Category,
			Difficulty:         s.Config.Difficulty,
			TotalTimeMinutes:   s.Elapsed.Minutes(),
			QuestionsTotal:     s.TotalQuestions,
			QuestionsAttempted: s.Attempted,
			QuestionsAnswered:  answered,
			QuestionsSkipped:   skipped,
			HintsUsed:          s.HintsUsed,
			SuccessRate:        b.SuccessRate(answered, s.Attempted),
		},
		Questions:   questions,
		Summary:     b.Summary(s),
		Overall:     overall,
		GeneratedAt: generatedAt,
	}
}

// Transcript renders the per-question log as plain text, used as input
// to the narrative evaluator.
func Transcript(records []models.AnswerRecord) string {
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "Q%d: %s\nAnswer: %s\nScore: %d\nFeedback: %s\n\n",
			i+1, r.Question, r.Answer, r.Evaluation.Score, r.Evaluation.Feedback)
	}
	return sb.String()
}
