package question

import (
	"fmt"

	"github.com/mockboard/iv/internal/models"
	"github.com/mockboard/iv/internal/roles"
)

// fallbackBanks holds built-in questions used when generation fails.
var fallbackBanks = map[models.Category]map[string][]string{
	models.CategoryTechnical: {
		"python_developer": {
			"What is the difference between a list and a tuple in Python?",
			"How do you handle exceptions in Python?",
			"Explain the concept of object-oriented programming.",
			"What are Python decorators and how do you use them?",
			"How would you optimize a slow Python script?",
		},
		"devops_engineer": {
			"What is the difference between a container and a virtual machine?",
			"How do you roll back a failed deployment?",
			"Explain how you would monitor a production service.",
			"What does infrastructure-as-code mean and why does it matter?",
			"How do you manage secrets in a CI/CD pipeline?",
		},
	},
	models.CategoryNonTechnical: {
		"hr_manager": {
			"How do you handle conflicts between team members?",
			"Describe your approach to performance management.",
			"How do you ensure diversity in hiring?",
			"What strategies do you use for employee retention?",
			"How do you handle difficult conversations with employees?",
		},
		"project_manager": {
			"How do you prioritize competing deadlines across projects?",
			"Describe how you communicate a slipping schedule to stakeholders.",
			"What is your approach to scoping a new project?",
			"How do you handle a chronically underperforming team member?",
			"Tell me about a project that failed and what you learned.",
		},
	},
}

// Fallback returns up to n built-in questions for the category/role, or a
// generic templated list when the role is unknown. Never returns nil for
// a positive n.
func Fallback(category models.Category, role string, n int) []string {
	if n <= 0 {
		return nil
	}

	bank := fallbackBanks[category][role]
	if len(bank) == 0 {
		display := roles.DisplayName(role)
		bank = []string{
			fmt.Sprintf("Tell me about your experience as a %s.", display),
			fmt.Sprintf("What challenges have you faced in %s roles?", display),
			fmt.Sprintf("How do you stay current with %s trends?", display),
			fmt.Sprintf("Describe a successful project from your %s work.", display),
			fmt.Sprintf("What skills matter most for a %s?", display),
		}
	}

	if n < len(bank) {
		return bank[:n]
	}

	// Pad by cycling the bank so callers always get n questions.
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, bank[i%len(bank)])
	}
	return out
}
