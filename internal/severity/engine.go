// Package severity suggests a bug severity from the report text.
package severity

import (
	"strings"

	"bug-lifecycle-tracker/internal/entities"
)

// Rule descriptions reported in Suggestion.MatchedRules.
const (
	RuleCriticalKeyword = "Critical keyword detected"
	RuleProduction      = "Production environment"
	RuleMinorKeyword    = "Minor UI keyword detected"
)

var (
	criticalKeywords = []string{"crash", "data loss", "payment failed", "security breach"}
	minorKeywords    = []string{"typo", "ui alignment", "color issue", "css"}
)

// Input is the part of a report the engine looks at.
type Input struct {
	Title       string
	Description string
	Environment entities.Environment
}

// Suggestion is the engine verdict.
type Suggestion struct {
	Severity     entities.Severity
	MatchedRules []string
}

// Suggest evaluates rules in order and stops at the first match.
func Suggest(in Input) Suggestion {
	text := strings.ToLower(in.Title + " " + in.Description)

	switch {
	case containsAny(text, criticalKeywords):
		return Suggestion{Severity: entities.SeverityCritical, MatchedRules: []string{RuleCriticalKeyword}}
	case in.Environment == entities.EnvProduction:
		return Suggestion{Severity: entities.SeverityHigh, MatchedRules: []string{RuleProduction}}
	case containsAny(text, minorKeywords):
		return Suggestion{Severity: entities.SeverityLow, MatchedRules: []string{RuleMinorKeyword}}
	default:
		return Suggestion{Severity: entities.SeverityMedium, MatchedRules: []string{}}
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
