// Package registry owns the live sessions of a deployment, mapping
// session ids to independently locked engines.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mockboard/iv/internal/engine"
	"github.com/mockboard/iv/internal/evaluate"
	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/question"
	"github.com/mockboard/iv/internal/report"
	"github.com/mockboard/iv/internal/store"
)

var (
	// ErrSessionNotFound marks operations against an unknown or removed
	// session id. Distinct from time expiry, which is a normal transition.
	ErrSessionNotFound = errors.New("session not found")
	// ErrStillActive is returned when a report is requested before the
	// session reached a terminal state.
	ErrStillActive = errors.New("session still active")
)

// Action is a candidate-facing operation on a running session.
type Action string

const (
	ActionSubmit Action = "submit"
	ActionHint   Action = "hint"
	ActionSkip   Action = "skip"
	ActionEnd    Action = "end"
)

// ParseAction validates an action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionSubmit, ActionHint, ActionSkip, ActionEnd:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action: %q (use: submit, hint, skip, end)", s)
}

// Narrator produces the overall qualitative evaluation of a transcript.
type Narrator interface {
	Narrate(ctx context.Context, transcript string, cfg models.SessionConfig) (string, error)
}

// session pairs an engine with the mutex that serializes access to it.
type session struct {
	id  string
	mu  sync.Mutex
	eng *engine.Engine

	// built once at the terminal transition
	report *models.Report
}

// Registry creates and tracks sessions. Safe for concurrent use; each
// session is single-writer behind its own lock.
type Registry struct {
	gen      question.Generator
	eval     evaluate.Evaluator
	narrator Narrator
	reports  store.Store
	builder  *report.Builder
	clock    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// Option configures a Registry.
type Option func(*Registry)

// WithNarrator sets the overall-evaluation collaborator.
func WithNarrator(n Narrator) Option {
	return func(r *Registry) { r.narrator = n }
}

// WithStore persists finished reports to the given store.
func WithStore(s store.Store) Option {
	return func(r *Registry) { r.reports = s }
}

// WithClock replaces the wall clock for the registry and the engines it
// creates, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.clock = now }
}

// New creates a Registry with the given collaborators.
func New(gen question.Generator, eval evaluate.Evaluator, opts ...Option) *Registry {
	r := &Registry{
		gen:      gen,
		eval:     eval,
		builder:  report.NewBuilder(),
		clock:    time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newULID generates a new ULID string. ulid.Make is safe for the
// concurrent Start calls a server deployment produces.
func newULID() string {
	return ulid.Make().String()
}

// Start creates a new session and returns its id and welcome text.
func (r *Registry) Start(ctx context.Context, cfg models.SessionConfig) (string, string, error) {
	eng := engine.New(r.gen, r.eval, engine.WithClock(r.clock))
	welcome, err := eng.Start(ctx, cfg)
	if err != nil {
		return "", "", err
	}

	s := &session{id: newULID(), eng: eng}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s.id, welcome, nil
}

func (r *Registry) get(id string) (*session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// QuestionView is the presentation-layer shape of the current question.
type QuestionView struct {
	AllDone              bool                 `json:"all_done,omitempty"`
	QuestionNumber       int                  `json:"question_number,omitempty"`
	Total                int                  `json:"total,omitempty"`
	Text                 string               `json:"text,omitempty"`
	TimeRemainingSeconds int                  `json:"time_remaining_seconds"`
	Status               models.SessionStatus `json:"status"`
}

// Question returns the current question for a session, transitioning it
// to expired first if its deadline has passed.
func (r *Registry) Question(ctx context.Context, id string) (*QuestionView, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eng.ExpireIfTimeUp() {
		r.finalize(ctx, s)
	}

	p := s.eng.Progress()
	view := &QuestionView{
		TimeRemainingSeconds: p.TimeRemainingSeconds,
		Status:               p.Status,
	}

	text, ok := s.eng.RawQuestion()
	if !ok || p.Status != models.SessionStatusActive {
		view.AllDone = true
		return view, nil
	}

	view.QuestionNumber = p.QuestionNumber
	view.Total = p.TotalQuestions
	view.Text = text
	return view, nil
}

// SubmitResult is the outcome of one submitted action.
type SubmitResult struct {
	Reply  string               `json:"reply"`
	Status models.SessionStatus `json:"status"`
	Report *models.Report       `json:"report,omitempty"`
}

// Submit applies one action to a session. When the action drives the
// session into a terminal state, the final report is attached.
func (r *Registry) Submit(ctx context.Context, id string, action Action, answer string) (*SubmitResult, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var reply string
	switch action {
	case ActionSubmit:
		reply = s.eng.Submit(ctx, answer)
	case ActionHint:
		reply = s.eng.Hint(ctx)
	case ActionSkip:
		reply = s.eng.Skip(ctx)
	case ActionEnd:
		reply = s.eng.End()
	default:
		return nil, fmt.Errorf("unknown action: %q", action)
	}

	result := &SubmitResult{Reply: reply, Status: s.eng.Status()}
	if s.eng.Status().Terminal() {
		result.Report = r.finalize(ctx, s)
	}
	return result, nil
}

// Report returns the final report for a terminal session.
func (r *Registry) Report(ctx context.Context, id string) (*models.Report, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.eng.ExpireIfTimeUp()
	if !s.eng.Status().Terminal() {
		return nil, ErrStillActive
	}
	return r.finalize(ctx, s), nil
}

// finalize builds the report exactly once per session, generates the
// narrative, and persists best-effort. Caller holds the session lock.
func (r *Registry) finalize(ctx context.Context, s *session) *models.Report {
	if s.report != nil {
		return s.report
	}

	answers := s.eng.Answers()
	cfg := s.eng.Config()

	var overall string
	if r.narrator != nil && len(answers) > 0 {
		text, err := r.narrator.Narrate(ctx, report.Transcript(answers), cfg)
		if err != nil {
			slog.Warn("report narrative generation failed", "session", s.id, "error", err)
		} else {
			overall = text
		}
	}

	rep := r.builder.Build(s.id, s.eng.Stats(), answers, overall, r.clock())
	rep.ID = newULID()
	s.report = rep

	if r.reports != nil {
		if err := r.reports.SaveReport(ctx, rep); err != nil {
			slog.Warn("report persistence failed", "session", s.id, "error", err)
		}
	}
	return rep
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
