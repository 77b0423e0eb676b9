package registry

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/store"
)

type fakeGen struct{ qs []string }

func (g *fakeGen) Generate(_ context.Context, _ models.SessionConfig, n int) ([]string, error) {
	if len(g.qs) > n {
		return g.qs[:n], nil
	}
	return g.qs, nil
}

type fakeEval struct{}

func (fakeEval) Evaluate(_ context.Context, _, _ string, _ models.SessionConfig) (models.Evaluation, error) {
	return models.Evaluation{Score: 8, Verdict: models.VerdictCorrect, Feedback: "Correct, let's move on."}, nil
}

func (fakeEval) Hint(_ context.Context, _ string, _ models.SessionConfig) (string, error) {
	return "Consider the data structure involved.", nil
}

type fakeNarrator struct{ called bool }

func (n *fakeNarrator) Narrate(_ context.Context, _ string, _ models.SessionConfig) (string, error) {
	n.called = true
	return "A confident performance overall.", nil
}

func testConfig() models.SessionConfig {
	return models.SessionConfig{
		Category:        models.CategoryTechnical,
		Role:            "python_developer",
		Difficulty:      models.DifficultyEasy,
		NumQuestions:    2,
		DurationMinutes: 10,
	}
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	gen := &fakeGen{qs: []string{"What is a list?", "What is a dict?"}}
	return New(gen, fakeEval{}, opts...)
}

func TestStartAndQuestion(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := newTestRegistry(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	id, welcome, err := r.Start(ctx, testConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, welcome, "Python Developer")

	view, err := r.Question(ctx, id)
	require.NoError(t, err)
	assert.False(t, view.AllDone)
	assert.Equal(t, 1, view.QuestionNumber)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, "What is a list?", view.Text)
	assert.Equal(t, 600, view.TimeRemainingSeconds)
}

func TestSessionNotFound(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Question(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = r.Submit(ctx, "missing", ActionSubmit, "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = r.Report(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, r.Remove("missing"), ErrSessionNotFound)
}

func TestSubmit_Actions(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	res, err := r.Submit(ctx, id, ActionHint, "")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Hint:")
	assert.Nil(t, res.Report)

	res, err = r.Submit(ctx, id, ActionSkip, "")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "What is a dict?")

	res, err = r.Submit(ctx, id, ActionSubmit, "a dict maps keys to values")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, res.Status)
	require.NotNil(t, res.Report, "terminal transition attaches the report")
	assert.Equal(t, id, res.Report.SessionID)
}

func TestSubmit_EndShortCircuits(t *testing.T) {
	narrator := &fakeNarrator{}
	r := newTestRegistry(t, WithNarrator(narrator))
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	// One answered question so there is a transcript to narrate.
	_, err = r.Submit(ctx, id, ActionSubmit, "an ordered mutable sequence")
	require.NoError(t, err)

	res, err := r.Submit(ctx, id, ActionEnd, "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, res.Status)
	require.NotNil(t, res.Report)
	assert.Equal(t, "A confident performance overall.", res.Report.Overall)
	assert.True(t, narrator.called)
}

func TestReport_StillActive(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	_, err = r.Report(ctx, id)
	assert.ErrorIs(t, err, ErrStillActive)
}

func TestReport_BuiltOnce(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	res, err := r.Submit(ctx, id, ActionEnd, "")
	require.NoError(t, err)

	rep, err := r.Report(ctx, id)
	require.NoError(t, err)
	assert.Same(t, res.Report, rep, "report is built exactly once")
}

func TestStore_PersistsFinishedSessions(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	r := newTestRegistry(t, WithStore(s))
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	_, err = r.Submit(ctx, id, ActionEnd, "")
	require.NoError(t, err)

	saved, err := s.GetReportBySession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "python_developer", saved.Info.Role)
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"submit", "hint", "skip", "end"} {
		a, err := ParseAction(valid)
		require.NoError(t, err)
		assert.Equal(t, Action(valid), a)
	}

	_, err := ParseAction("dance")
	assert.Error(t, err)
}

func TestConcurrentStarts(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := r.Start(ctx, testConfig())
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "session ids must be unique")
		seen[id] = true
	}
	assert.Equal(t, 20, r.Len())
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	id, _, err := r.Start(ctx, testConfig())
	require.NoError(t, err)

	require.NoError(t, r.Remove(id))
	_, err = r.Question(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
