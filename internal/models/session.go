package models

import "time"

// SessionStatus represents the lifecycle state of an interview session.
type SessionStatus string

const (
	SessionStatusIdle      SessionStatus = "idle"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusExpired   SessionStatus = "expired"
)

// Terminal reports whether no further question progression is possible.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired
}

// Category represents the kind of skills an interview assesses.
type Category string

const (
	CategoryTechnical    Category = "technical"
	CategoryNonTechnical Category = "non_technical"
)

// Difficulty represents the question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// SessionConfig holds the immutable parameters of one interview run.
type SessionConfig struct {
	Category        Category   `json:"category"`
	Role            string     `json:"role"`
	Difficulty      Difficulty `json:"difficulty"`
	NumQuestions    int        `json:"num_questions"`
	DurationMinutes int        `json:"duration_minutes"`
}

// Verdict is the categorical judgement of a single answer.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
	VerdictSkipped   Verdict = "skipped"
	VerdictUncertain Verdict = "uncertain"
	VerdictUnscored  Verdict = "unscored"
)

// Evaluation is the structured judgement of one answer.
type Evaluation struct {
	Score    int     `json:"score"` // 1-10, 0 when unscored
	Verdict  Verdict `json:"verdict"`
	Feedback string  `json:"feedback"`
}

// AnswerRecord is one append-only entry in a session's answer log.
type AnswerRecord struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
	Attempt    int        `json:"attempt"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Progress is a read-only snapshot of where a session stands.
type Progress struct {
	QuestionNumber       int           `json:"question_number"` // 1-based, 0 when exhausted
	TotalQuestions       int           `json:"total_questions"`
	Attempts             int           `json:"attempts"`   // attempts on the current question
	HintGiven            bool          `json:"hint_given"` // hint already issued for the current question
	TimeRemainingSeconds int           `json:"time_remaining_seconds"`
	Status               SessionStatus `json:"status"`
}
