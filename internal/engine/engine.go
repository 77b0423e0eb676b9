// Package engine implements the interview session state machine: question
// progression, timing, attempt and hint bookkeeping, and summary output.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mockboard/iv/internal/evaluate"
	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/question"
	"github.com/mockboard/iv/internal/report"
	"github.com/mockboard/iv/internal/roles"
)

// Session reply fragments. These are part of the engine's observable
// contract and exercised by tests.
const (
	completedMessage   = "The interview has been completed. Thank you for participating!"
	timeUpMessage      = "Time's up! The interview has ended."
	uncertainSkipMsg   = "No problem! I understand this one is challenging. Let's move on to the next question."
	userSkipMessage    = "Okay, let's skip this one and keep going."
	endedByUserMessage = "Interview ended."
	retrySuffix        = "Take your time and give it a try!"
	noMoreQuestions    = "No more questions available."
)

var (
	// ErrActive is returned when an operation requires a session that has
	// not started yet.
	ErrActive = errors.New("session already active")
	// ErrNotActive is returned when a mutating operation reaches a session
	// in a terminal or idle state.
	ErrNotActive = errors.New("session not active")
)

// Engine owns one session's state. It performs no internal locking: all
// mutating calls must be serialized by the owner (the registry wraps each
// engine in its own mutex).
type Engine struct {
	gen     question.Generator
	eval    evaluate.Evaluator
	builder *report.Builder
	now     func() time.Time

	cfg       models.SessionConfig
	status    models.SessionStatus
	questions []string
	cursor    int
	startTime time.Time
	endTime   time.Time // frozen at the terminal transition
	attempts  map[int]int
	hintGiven map[int]bool
	answers   []models.AnswerRecord
	skipped   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an idle engine with the given collaborators.
func New(gen question.Generator, eval evaluate.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		gen:     gen,
		eval:    eval,
		builder: report.NewBuilder(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset returns the engine to the idle pre-start state, discarding all
// session state.
func (e *Engine) Reset() {
	e.cfg = models.SessionConfig{}
	e.status = models.SessionStatusIdle
	e.questions = nil
	e.cursor = 0
	e.startTime = time.Time{}
	e.endTime = time.Time{}
	e.attempts = make(map[int]int)
	e.hintGiven = make(map[int]bool)
	e.answers = nil
	e.skipped = 0
}

// Start begins a session. Question generation failure is not fatal: the
// engine degrades to the built-in fallback bank for the category/role.
// Returns the welcome text.
func (e *Engine) Start(ctx context.Context, cfg models.SessionConfig) (string, error) {
	if e.status == models.SessionStatusActive {
		return "", ErrActive
	}

	cfg = roles.ApplyPresets(cfg)
	if err := roles.Validate(cfg); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	e.Reset()

	qs, err := e.gen.Generate(ctx, cfg, cfg.NumQuestions)
	if err != nil || len(qs) == 0 {
		qs = question.Fallback(cfg.Category, cfg.Role, cfg.NumQuestions)
	}
	if len(qs) > cfg.NumQuestions {
		qs = qs[:cfg.NumQuestions]
	}

	e.cfg = cfg
	e.questions = qs
	e.startTime = e.now()
	e.status = models.SessionStatusActive

	return e.welcome(), nil
}

func (e *Engine) welcome() string {
	return fmt.Sprintf(`Welcome to your %s interview!

Interview Details:
- Role: %s
- Category: %s
- Difficulty: %s
- Questions: %d
- Duration: %d minutes

I'll evaluate your answers and give feedback as we go. If you need help, just ask for a hint.`,
		roles.DisplayName(e.cfg.Role),
		roles.DisplayName(e.cfg.Role),
		roles.DisplayName(string(e.cfg.Category)),
		roles.DisplayName(string(e.cfg.Difficulty)),
		len(e.questions),
		e.cfg.DurationMinutes)
}

// CurrentQuestion returns the formatted "Question i/N" text, or false
// when all questions are exhausted.
func (e *Engine) CurrentQuestion() (string, bool) {
	if e.cursor >= len(e.questions) {
		return "", false
	}
	return fmt.Sprintf("Question %d/%d:\n\n%s",
		e.cursor+1, len(e.questions), e.questions[e.cursor]), true
}

// RawQuestion returns the current question text without formatting.
func (e *Engine) RawQuestion() (string, bool) {
	if e.cursor >= len(e.questions) {
		return "", false
	}
	return e.questions[e.cursor], true
}

// TimeUp reports whether the wall-clock deadline has passed. Pure check,
// no state change.
func (e *Engine) TimeUp() bool {
	if e.startTime.IsZero() {
		return false
	}
	return e.now().Sub(e.startTime) > time.Duration(e.cfg.DurationMinutes)*time.Minute
}

// TimeRemaining returns the time left before expiry, floored at zero.
func (e *Engine) TimeRemaining() time.Duration {
	if e.startTime.IsZero() {
		return 0
	}
	remaining := time.Duration(e.cfg.DurationMinutes)*time.Minute - e.now().Sub(e.startTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpireIfTimeUp transitions an active session to expired when its
// deadline has passed. Returns true if the session is now expired.
func (e *Engine) ExpireIfTimeUp() bool {
	if e.status == models.SessionStatusActive && e.TimeUp() {
		e.finish(models.SessionStatusExpired)
	}
	return e.status == models.SessionStatusExpired
}

// finish freezes the session in a terminal state. Terminal states are
// monotonic: once set, only Reset leaves them.
func (e *Engine) finish(status models.SessionStatus) {
	if e.status.Terminal() {
		return
	}
	e.status = status
	e.endTime = e.now()
}

// Submit is the central transition: it classifies the answer, applies the
// uncertainty/hint/skip policy, evaluates through the collaborator, and
// decides whether to advance. It never fails: collaborator errors degrade
// to fallback judgements.
func (e *Engine) Submit(ctx context.Context, userText string) string {
	if e.status != models.SessionStatusActive || e.cursor >= len(e.questions) {
		return completedMessage
	}

	if e.TimeUp() {
		e.finish(models.SessionStatusExpired)
		return timeUpMessage + "\n\n" + e.Summary()
	}

	currentQuestion := e.questions[e.cursor]

	if IsUncertain(userText) {
		e.attempts[e.cursor]++
		e.appendAnswer(currentQuestion, userText, models.Evaluation{
			Verdict:  models.VerdictUncertain,
			Feedback: "Candidate indicated uncertainty",
		}, e.attempts[e.cursor])

		if e.attempts[e.cursor] >= 2 {
			return e.skipToNext(ctx, uncertainSkipMsg)
		}

		e.hintGiven[e.cursor] = true
		return e.hintText(ctx, currentQuestion) + "\n\n" + retrySuffix
	}

	ev, err := e.eval.Evaluate(ctx, currentQuestion, userText, e.cfg)
	if err != nil {
		ev = evaluate.Neutral()
	}
	e.appendAnswer(currentQuestion, userText, ev, e.attempts[e.cursor]+1)

	if !ShouldProceed(ev.Feedback) {
		// Same question stays active, inviting elaboration.
		return ev.Feedback
	}

	e.cursor++
	if e.cursor >= len(e.questions) {
		e.finish(models.SessionStatusCompleted)
		return ev.Feedback + "\n\n" + e.Summary()
	}
	next, _ := e.CurrentQuestion()
	return ev.Feedback + "\n\n" + next
}

// Hint produces a hint for the current question without advancing it.
// Callable any time while active.
func (e *Engine) Hint(ctx context.Context) string {
	if e.status != models.SessionStatusActive {
		return completedMessage
	}
	q, ok := e.RawQuestion()
	if !ok {
		return noMoreQuestions
	}
	e.hintGiven[e.cursor] = true
	return e.hintText(ctx, q)
}

func (e *Engine) hintText(ctx context.Context, q string) string {
	hint, err := e.eval.Hint(ctx, q, e.cfg)
	if err != nil || hint == "" {
		hint = evaluate.FallbackHint
	}
	return "Hint: " + hint
}

// Skip abandons the current question at the candidate's request.
func (e *Engine) Skip(ctx context.Context) string {
	if e.status != models.SessionStatusActive {
		return completedMessage
	}
	if _, ok := e.RawQuestion(); !ok {
		return noMoreQuestions
	}
	return e.skipToNext(ctx, userSkipMessage)
}

// skipToNext records a SKIPPED disposition for the current question and
// advances the cursor.
func (e *Engine) skipToNext(_ context.Context, message string) string {
	currentQuestion := e.questions[e.cursor]
	e.appendAnswer(currentQuestion, "SKIPPED", models.Evaluation{
		Verdict:  models.VerdictSkipped,
		Feedback: "Question was skipped",
	}, e.attempts[e.cursor])

	// The summary counting rule reads two or more attempts as "skipped";
	// make explicit skips satisfy it too.
	if e.attempts[e.cursor] < 2 {
		e.attempts[e.cursor] = 2
	}
	e.skipped++
	e.cursor++

	if e.cursor >= len(e.questions) {
		e.finish(models.SessionStatusCompleted)
		return message + "\n\n" + e.Summary()
	}
	next, _ := e.CurrentQuestion()
	return message + "\n\n" + next
}

// End terminates the session at the candidate's request, regardless of
// progress, and returns the final summary. Ending an already-terminal
// session just returns the summary again.
func (e *Engine) End() string {
	if e.status == models.SessionStatusIdle {
		return completedMessage
	}
	if e.status.Terminal() {
		return e.Summary()
	}
	e.finish(models.SessionStatusCompleted)
	return endedByUserMessage + "\n\n" + e.Summary()
}

func (e *Engine) appendAnswer(q, answer string, ev models.Evaluation, attempt int) {
	e.answers = append(e.answers, models.AnswerRecord{
		Question:   q,
		Answer:     answer,
		Evaluation: ev,
		Attempt:    attempt,
		Timestamp:  e.now(),
	})
}

// AddQuestions extends the question list mid-session. Only allowed while
// active; the cursor is never touched.
func (e *Engine) AddQuestions(qs ...string) error {
	if e.status != models.SessionStatusActive {
		return ErrNotActive
	}
	e.questions = append(e.questions, qs...)
	return nil
}

// Status returns the session lifecycle state.
func (e *Engine) Status() models.SessionStatus { return e.status }

// Config returns the session's immutable configuration.
func (e *Engine) Config() models.SessionConfig { return e.cfg }

// HintsUsed counts the questions for which a hint was issued.
func (e *Engine) HintsUsed() int {
	n := 0
	for _, given := range e.hintGiven {
		if given {
			n++
		}
	}
	return n
}

// Answers returns a copy of the append-only answer log.
func (e *Engine) Answers() []models.AnswerRecord {
	out := make([]models.AnswerRecord, len(e.answers))
	copy(out, e.answers)
	return out
}

// Progress reports where the session stands.
func (e *Engine) Progress() models.Progress {
	p := models.Progress{
		TotalQuestions:       len(e.questions),
		Attempts:             e.attempts[e.cursor],
		HintGiven:            e.hintGiven[e.cursor],
		TimeRemainingSeconds: int(e.TimeRemaining().Seconds()),
		Status:               e.status,
	}
	if e.cursor < len(e.questions) {
		p.QuestionNumber = e.cursor + 1
	}
	return p
}

// Stats captures the inputs to report generation. After a terminal
// transition the elapsed time is frozen, so Stats (and therefore the
// summary) is stable across calls.
func (e *Engine) Stats() report.Stats {
	end := e.endTime
	if end.IsZero() {
		end = e.now()
	}
	elapsed := time.Duration(0)
	if !e.startTime.IsZero() {
		elapsed = end.Sub(e.startTime)
	}

	attempts := make(map[int]int, len(e.attempts))
	for k, v := range e.attempts {
		attempts[k] = v
	}

	return report.Stats{
		Config:         e.cfg,
		TotalQuestions: len(e.questions),
		Attempted:      e.cursor,
		Attempts:       attempts,
		HintsUsed:      e.HintsUsed(),
		Elapsed:        elapsed,
	}
}

// Summary renders the final summary text. Idempotent once the session is
// terminal: no state is mutated and repeated calls yield identical text.
func (e *Engine) Summary() string {
	return e.builder.Summary(e.Stats())
}
