package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/registry"
	"github.com/mockboard/iv/internal/roles"
)

var (
	runCategory   string
	runRole       string
	runDifficulty string
	runQuestions  int
	runDuration   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive interview in the terminal",
	Long: `Run starts a timed mock interview in the terminal. Type your answer
and press Enter to submit it. During the interview you can also type:

  /hint   get a hint for the current question
  /skip   skip the current question
  /end    end the interview and see your report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterview(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runCategory, "category", "", "Question category: technical, non_technical")
	runCmd.Flags().StringVar(&runRole, "role", "", "Role to interview for (see 'iv roles')")
	runCmd.Flags().StringVar(&runDifficulty, "difficulty", "", "Difficulty: easy, medium, hard")
	runCmd.Flags().IntVar(&runQuestions, "questions", 0, "Number of questions (0 = difficulty preset)")
	runCmd.Flags().IntVar(&runDuration, "duration", 0, "Time limit in minutes (0 = difficulty preset)")
	rootCmd.AddCommand(runCmd)
}

// runConfig resolves the session config from flags, falling back to the
// viper-configured defaults.
func runConfig() (models.SessionConfig, error) {
	categoryArg := runCategory
	if categoryArg == "" {
		categoryArg = viper.GetString("interview.category")
	}
	role := runRole
	if role == "" {
		role = viper.GetString("interview.role")
	}
	difficultyArg := runDifficulty
	if difficultyArg == "" {
		difficultyArg = viper.GetString("interview.difficulty")
	}

	category, err := roles.ParseCategory(categoryArg)
	if err != nil {
		return models.SessionConfig{}, err
	}
	difficulty, err := roles.ParseDifficulty(difficultyArg)
	if err != nil {
		return models.SessionConfig{}, err
	}

	questions := runQuestions
	if questions == 0 {
		questions = viper.GetInt("interview.questions")
	}
	duration := runDuration
	if duration == 0 {
		duration = viper.GetInt("interview.duration")
	}

	return models.SessionConfig{
		Category:        category,
		Role:            role,
		Difficulty:      difficulty,
		NumQuestions:    questions,
		DurationMinutes: duration,
	}, nil
}

func runInterview(ctx context.Context) error {
	cfg, err := runConfig()
	if err != nil {
		return err
	}

	reg := getRegistry()
	id, welcome, err := reg.Start(ctx, cfg)
	if err != nil {
		return err
	}

	ui.VerboseLog("session %s started", id)
	ui.Interviewer(welcome)
	if view, err := reg.Question(ctx, id); err == nil && !view.AllDone {
		ui.Interviewer(view.Text)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(ui.Out, "> ")
		if !scanner.Scan() {
			// stdin closed; end the session and show the report
			result, err := reg.Submit(ctx, id, registry.ActionEnd, "")
			if err != nil {
				return err
			}
			ui.Interviewer(result.Reply)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		action := registry.ActionSubmit
		switch strings.ToLower(line) {
		case "/hint":
			action = registry.ActionHint
		case "/skip":
			action = registry.ActionSkip
		case "/end", "/quit", "/exit":
			action = registry.ActionEnd
		}

		result, err := reg.Submit(ctx, id, action, line)
		if err != nil {
			return err
		}
		ui.Interviewer(result.Reply)

		if result.Status.Terminal() {
			if result.Report != nil && result.Report.Overall != "" {
				ui.Interviewer(result.Report.Overall)
			}
			return nil
		}
	}
}
