package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/output"
)

var (
	reportLimit  int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect saved interview reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportListRun(cmd.Context())
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one report in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportShowRun(cmd.Context(), args[0])
	},
}

var reportExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a report as JSON, CSV, or Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportExportRun(cmd.Context(), args[0])
	},
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportDeleteRun(cmd.Context(), args[0])
	},
}

func init() {
	reportListCmd.Flags().IntVar(&reportLimit, "limit", 20, "Maximum number of reports to list")
	reportExportCmd.Flags().StringVar(&reportFormat, "format", "json", "Output format: json, csv, markdown")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportExportCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	rootCmd.AddCommand(reportCmd)
}

func reportListRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	reports, err := s.ListReports(ctx, reportLimit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		ui.Info("No saved reports. Finish an interview with 'iv run' to create one.")
		return nil
	}

	table := ui.Table([]string{"ID", "Role", "Difficulty", "Answered", "Skipped", "Rate", "Date"})
	for _, r := range reports {
		table.Append([]string{
			r.ID,
			r.Info.Role,
			string(r.Info.Difficulty),
			fmt.Sprintf("%d/%d", r.Info.QuestionsAnswered, r.Info.QuestionsAttempted),
			fmt.Sprintf("%d", r.Info.QuestionsSkipped),
			output.RateColor(r.Info.SuccessRate),
			r.GeneratedAt.Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

// resolveReport looks an id up as a report id first, then as a session id.
func resolveReport(ctx context.Context, id string) (*models.Report, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	if r, err := s.GetReport(ctx, id); err == nil {
		return r, nil
	}
	return s.GetReportBySession(ctx, id)
}

func reportShowRun(ctx context.Context, id string) error {
	r, err := resolveReport(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out, r.Summary)
	if r.Overall != "" {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, r.Overall)
	}

	if len(r.Questions) > 0 {
		fmt.Fprintln(ui.Out)
		table := ui.Table([]string{"#", "Verdict", "Score", "Question"})
		for i, q := range r.Questions {
			table.Append([]string{
				fmt.Sprintf("%d", i+1),
				output.VerdictColor(string(q.Evaluation.Verdict)),
				fmt.Sprintf("%d", q.Evaluation.Score),
				truncate(q.Question, 60),
			})
		}
		return table.Render()
	}
	return nil
}

func reportExportRun(ctx context.Context, id string) error {
	r, err := resolveReport(ctx, id)
	if err != nil {
		return err
	}

	switch reportFormat {
	case "json":
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"Question", "Answer", "Verdict", "Score", "Feedback", "Attempt", "Timestamp"})
		for _, q := range r.Questions {
			w.Write([]string{
				q.Question,
				q.Answer,
				string(q.Evaluation.Verdict),
				fmt.Sprintf("%d", q.Evaluation.Score),
				q.Evaluation.Feedback,
				fmt.Sprintf("%d", q.Attempt),
				q.Timestamp.Format("2006-01-02 15:04:05"),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintf(ui.Out, "# Interview Report: %s\n\n", r.Info.Role)
		fmt.Fprintf(ui.Out, "- Category: %s\n", r.Info.Category)
		fmt.Fprintf(ui.Out, "- Difficulty: %s\n", r.Info.Difficulty)
		fmt.Fprintf(ui.Out, "- Answered: %d/%d (skipped %d)\n", r.Info.QuestionsAnswered, r.Info.QuestionsAttempted, r.Info.QuestionsSkipped)
		fmt.Fprintf(ui.Out, "- Success rate: %.0f%%\n", r.Info.SuccessRate)
		fmt.Fprintf(ui.Out, "- Date: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
		fmt.Fprintln(ui.Out, "| # | Verdict | Score | Question |")
		fmt.Fprintln(ui.Out, "|---|---------|-------|----------|")
		for i, q := range r.Questions {
			fmt.Fprintf(ui.Out, "| %d | %s | %d | %s |\n", i+1, q.Evaluation.Verdict, q.Evaluation.Score, strings.ReplaceAll(q.Question, "|", "\\|"))
		}
		if r.Overall != "" {
			fmt.Fprintf(ui.Out, "\n## Overall\n\n%s\n", r.Overall)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", reportFormat)
	}
}

func reportDeleteRun(ctx context.Context, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.DeleteReport(ctx, id); err != nil {
		return err
	}
	ui.Success("Deleted report %s", id)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
