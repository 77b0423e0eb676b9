package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List available interview roles and difficulty presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return rolesRun()
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func rolesRun() error {
	for _, category := range []models.Category{models.CategoryTechnical, models.CategoryNonTechnical} {
		fmt.Fprintf(ui.Out, "%s\n", roles.DisplayName(string(category)))
		table := ui.Table([]string{"Role", "Name"})
		for _, role := range roles.Catalog[category] {
			table.Append([]string{role, roles.DisplayName(role)})
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(ui.Out)
	}

	fmt.Fprintln(ui.Out, "Difficulty presets")
	table := ui.Table([]string{"Difficulty", "Questions", "Duration"})
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		p := roles.Presets[d]
		table.Append([]string{
			string(d),
			fmt.Sprintf("%d", p.NumQuestions),
			fmt.Sprintf("%d min", p.DurationMinutes),
		})
	}
	return table.Render()
}
