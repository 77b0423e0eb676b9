package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/registry"
	"github.com/mockboard/iv/internal/roles"
	"github.com/mockboard/iv/internal/store"
)

// Server wraps the session registry and exposes it as MCP tools, so an
// MCP client can drive a full interview over stdio.
type Server struct {
	registry *registry.Registry
	reports  store.Store
}

// NewServer creates the MCP server wrapper. The reports store may be
// nil when persistence is not configured.
func NewServer(reg *registry.Registry, reports store.Store) *Server {
	return &Server{
		registry: reg,
		reports:  reports,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("iv", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listRolesTool())
	srv.AddTool(s.startInterviewTool())
	srv.AddTool(s.currentQuestionTool())
	srv.AddTool(s.submitAnswerTool())
	srv.AddTool(s.getReportTool())
	srv.AddTool(s.listReportsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func resultJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// iv_list_roles
func (s *Server) listRolesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_list_roles",
		mcp.WithDescription("List the available interview roles grouped by category (technical, non_technical), plus the valid difficulty levels."),
	)
	return tool, s.handleListRoles
}

func (s *Server) handleListRoles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := map[string]any{
		"categories":   map[models.Category][]string{},
		"difficulties": []string{"easy", "medium", "hard"},
	}
	categories := out["categories"].(map[models.Category][]string)
	for category, list := range roles.Catalog {
		categories[category] = list
	}
	return resultJSON(out)
}

// iv_start_interview
func (s *Server) startInterviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_start_interview",
		mcp.WithDescription("Start a new interview session. Returns the session id, the welcome message, and the first question."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Question category: technical or non_technical")),
		mcp.WithString("role", mcp.Required(), mcp.Description("Role to interview for, e.g. python_developer or hr_manager")),
		mcp.WithString("difficulty", mcp.Description("Difficulty level: easy, medium, or hard (default medium)")),
		mcp.WithNumber("num_questions", mcp.Description("Number of questions; 0 uses the difficulty preset")),
		mcp.WithNumber("duration_minutes", mcp.Description("Time limit in minutes; 0 uses the difficulty preset")),
	)
	return tool, s.handleStartInterview
}

func (s *Server) handleStartInterview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categoryArg, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}
	role, err := request.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: role"), nil
	}

	category, err := roles.ParseCategory(categoryArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	difficulty, err := roles.ParseDifficulty(request.GetString("difficulty", "medium"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := models.SessionConfig{
		Category:        category,
		Role:            role,
		Difficulty:      difficulty,
		NumQuestions:    request.GetInt("num_questions", 0),
		DurationMinutes: request.GetInt("duration_minutes", 0),
	}

	id, welcome, err := s.registry.Start(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start interview: %v", err)), nil
	}

	view, err := s.registry.Question(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch first question: %v", err)), nil
	}

	return resultJSON(map[string]any{
		"session_id": id,
		"welcome":    welcome,
		"question":   view,
	})
}

// iv_current_question
func (s *Server) currentQuestionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_current_question",
		mcp.WithDescription("Get the current question, remaining time, and status for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by iv_start_interview")),
	)
	return tool, s.handleCurrentQuestion
}

func (s *Server) handleCurrentQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	view, err := s.registry.Question(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch question: %v", err)), nil
	}
	return resultJSON(view)
}

// iv_submit_answer
func (s *Server) submitAnswerTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_submit_answer",
		mcp.WithDescription("Submit an answer or a control action for the current question. Actions: submit (default, requires answer), hint, skip, end. Returns the interviewer reply and, when the session finishes, the final report."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by iv_start_interview")),
		mcp.WithString("answer", mcp.Description("The candidate's answer text (required for the submit action)")),
		mcp.WithString("action", mcp.Description("Action to take: submit, hint, skip, or end (default submit)")),
	)
	return tool, s.handleSubmitAnswer
}

func (s *Server) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	action, err := registry.ParseAction(request.GetString("action", "submit"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer := request.GetString("answer", "")
	if action == registry.ActionSubmit && answer == "" {
		return mcp.NewToolResultError("missing required parameter: answer"), nil
	}

	result, err := s.registry.Submit(ctx, id, action, answer)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to submit: %v", err)), nil
	}
	return resultJSON(result)
}

// iv_get_report
func (s *Server) getReportTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_get_report",
		mcp.WithDescription("Get the final report for a finished session. Works for in-memory sessions by session id and for persisted reports by report id."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id or persisted report id")),
	)
	return tool, s.handleGetReport
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	rep, err := s.registry.Report(ctx, id)
	if err != nil && s.reports != nil {
		// Not a live session; try the persisted reports.
		if stored, serr := s.reports.GetReport(ctx, id); serr == nil {
			return resultJSON(stored)
		}
		if stored, serr := s.reports.GetReportBySession(ctx, id); serr == nil {
			return resultJSON(stored)
		}
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get report: %v", err)), nil
	}
	return resultJSON(rep)
}

// iv_list_reports
func (s *Server) listReportsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("iv_list_reports",
		mcp.WithDescription("List persisted interview reports, newest first. Returns a JSON array with id, session_id, role, difficulty, success_rate, and generated_at."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of reports to return (default 20)")),
	)
	return tool, s.handleListReports
}

func (s *Server) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.reports == nil {
		return mcp.NewToolResultError("report persistence is not configured"), nil
	}
	limit := request.GetInt("limit", 20)

	reports, err := s.reports.ListReports(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reports: %v", err)), nil
	}

	type reportOut struct {
		ID          string  `json:"id"`
		SessionID   string  `json:"session_id"`
		Role        string  `json:"role"`
		Category    string  `json:"category"`
		Difficulty  string  `json:"difficulty"`
		SuccessRate float64 `json:"success_rate"`
		GeneratedAt string  `json:"generated_at"`
	}

	out := make([]reportOut, len(reports))
	for i, r := range reports {
		out[i] = reportOut{
			ID:          r.ID,
			SessionID:   r.SessionID,
			Role:        r.Info.Role,
			Category:    string(r.Info.Category),
			Difficulty:  string(r.Info.Difficulty),
			SuccessRate: r.Info.SuccessRate,
			GeneratedAt: r.GeneratedAt.Format("2006-01-02 15:04"),
		}
	}
	return resultJSON(out)
}
