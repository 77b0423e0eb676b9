package engine

import "strings"

// UncertainPhrases is the fixed phrase table for uncertainty detection.
// Matching is case-insensitive substring containment, not language
// understanding.
var UncertainPhrases = []string{
	"i don't know", "i'm not sure", "i m not sure", "not sure",
	"dont know", "don't know", "no idea", "not certain",
	"i dont know", "im not sure", "i am not sure",
	"i have no idea", "no clue", "not really sure",
}

// ProceedIndicators is the fixed phrase table that marks evaluator
// feedback as an invitation to advance to the next question.
var ProceedIndicators = []string{
	"next question",
	"move on",
	"let's continue",
	"let's move to",
	"good answer",
	"correct",
	"well done",
	"excellent",
	"great job",
	"perfect",
	"that's right",
	"exactly",
}

// IsUncertain reports whether a candidate's answer signals uncertainty.
func IsUncertain(answer string) bool {
	return containsAny(answer, UncertainPhrases)
}

// ShouldProceed reports whether evaluator feedback indicates the session
// should advance to the next question.
func ShouldProceed(feedback string) bool {
	return containsAny(feedback, ProceedIndicators)
}

func containsAny(s string, phrases []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
