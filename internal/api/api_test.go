package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/registry"
)

type fakeGen struct {
	questions []string
}

func (g *fakeGen) Generate(_ context.Context, _ models.SessionConfig, n int) ([]string, error) {
	if len(g.questions) >= n {
		return g.questions[:n], nil
	}
	return g.questions, nil
}

type fakeEval struct {
	eval models.Evaluation
}

func (e *fakeEval) Evaluate(_ context.Context, _, _ string, _ models.SessionConfig) (models.Evaluation, error) {
	return e.eval, nil
}

func (e *fakeEval) Hint(_ context.Context, _ string, _ models.SessionConfig) (string, error) {
	return "think about indexes", nil
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gen := &fakeGen{questions: []string{"What is a goroutine?", "What is a channel?"}}
	eval := &fakeEval{eval: models.Evaluation{
		Score:    8,
		Verdict:  models.VerdictCorrect,
		Feedback: "Good. Let's move to the next question.",
	}}
	reg := registry.New(gen, eval)

	srv := httptest.NewServer(NewServer(reg, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func startTestSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	body := `{"category":"technical","role":"python_developer","difficulty":"easy","num_questions":2,"duration_minutes":10}`
	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["session_id"])
	return out["session_id"]
}

func TestStartSession(t *testing.T) {
	srv := setupTestServer(t)

	body := `{"category":"technical","role":"python_developer","difficulty":"medium"}`
	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out["session_id"])
	assert.Contains(t, out["welcome"], "Python Developer")
}

func TestStartSessionInvalidCategory(t *testing.T) {
	srv := setupTestServer(t)

	body := `{"category":"managerial","role":"python_developer","difficulty":"easy"}`
	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartSessionBadJSON(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCurrentQuestion(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/sessions/%s/question", srv.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view registry.QuestionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, 1, view.QuestionNumber)
	assert.Equal(t, 2, view.Total)
	assert.Contains(t, view.Text, "goroutine")
	assert.Greater(t, view.TimeRemainingSeconds, 0)
}

func TestCurrentQuestionNotFound(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/sessions/nope/question")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitAdvancesAndCompletes(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	submit := func(body string) *registry.SubmitResult {
		t.Helper()
		resp, err := http.Post(
			fmt.Sprintf("%s/api/v1/sessions/%s/submit", srv.URL, id),
			"application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result registry.SubmitResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return &result
	}

	first := submit(`{"action":"submit","answer":"A lightweight thread managed by the runtime."}`)
	assert.Equal(t, models.SessionStatusActive, first.Status)
	assert.Contains(t, first.Reply, "Question 2/2")
	assert.Nil(t, first.Report)

	second := submit(`{"action":"submit","answer":"A typed conduit for communication."}`)
	assert.Equal(t, models.SessionStatusCompleted, second.Status)
	require.NotNil(t, second.Report)
	assert.Equal(t, 2, second.Report.Info.QuestionsAnswered)
}

func TestSubmitUncertainTwiceSkipsQuestion(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	submit := func(body string) *registry.SubmitResult {
		t.Helper()
		resp, err := http.Post(
			fmt.Sprintf("%s/api/v1/sessions/%s/submit", srv.URL, id),
			"application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result registry.SubmitResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return &result
	}

	first := submit(`{"action":"submit","answer":"I don't know"}`)
	assert.Contains(t, first.Reply, "Hint:")
	assert.NotContains(t, first.Reply, "Question 2/2")

	second := submit(`{"action":"submit","answer":"no idea, sorry"}`)
	assert.Contains(t, second.Reply, "Question 2/2")
	assert.Equal(t, models.SessionStatusActive, second.Status)
}

func TestSubmitUnknownAction(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/sessions/%s/submit", srv.URL, id),
		"application/json", strings.NewReader(`{"action":"dance"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionReportStillActive(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/sessions/%s/report", srv.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionReportAfterEnd(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/sessions/%s/submit", srv.URL, id),
		"application/json", strings.NewReader(`{"action":"end"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/sessions/%s/report", srv.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep models.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.NotEmpty(t, rep.Summary)
	assert.Equal(t, "python_developer", rep.Info.Role)
}

func TestDeleteSession(t *testing.T) {
	srv := setupTestServer(t)
	id := startTestSession(t, srv)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, id), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(fmt.Sprintf("%s/api/v1/sessions/%s/question", srv.URL, id))
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestListRoles(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/roles")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []struct {
		Category models.Category   `json:"category"`
		Roles    map[string]string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, models.CategoryTechnical, out[0].Category)
	assert.Equal(t, "Python Developer", out[0].Roles["python_developer"])
}

func TestListReportsNoStore(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestCORSPreflight(t *testing.T) {
	srv := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/roles", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
