package models

import "time"

// SessionInfo summarizes the parameters and totals of a finished session.
type SessionInfo struct {
	Role             string     `json:"role"`
	Category         Category   `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	TotalTimeMinutes float64    `json:"total_time_minutes"`
	QuestionsTotal   int        `json:"questions_total"`
	QuestionsAttempted int      `json:"questions_attempted"`
	QuestionsAnswered  int      `json:"questions_answered"`
	QuestionsSkipped   int      `json:"questions_skipped"`
	HintsUsed          int      `json:"hints_used"`
	SuccessRate        float64  `json:"success_rate"` // answered/attempted * 100
}

// Report is the final performance report for one interview session.
type Report struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Info        SessionInfo    `json:"session_info"`
	Questions   []AnswerRecord `json:"questions"`
	Summary     string         `json:"summary"` // locally computed summary text
	Overall     string         `json:"overall"` // narrative evaluation (LLM when available)
	GeneratedAt time.Time      `json:"generated_at"`
}
