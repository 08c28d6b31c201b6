package search

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ghscout/internal/secrets"
)

// Issue is a problem found in a snippet.
type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Suggestion is a non-blocking observation about a snippet.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Validation is the outcome of a snippet check.
type Validation struct {
	Valid       bool         `json:"valid"`
	Score       int          `json:"score"`
	Status      string       `json:"status"`
	Issues      []Issue      `json:"issues"`
	Warnings    []Issue      `json:"warnings"`
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary"`
}

var hardcodedIPPattern = regexp.MustCompile(`['"]\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}['"]`)

// Validator checks code snippets for secrets, deprecated APIs and
// common quality problems before they are handed back to a caller.
type Validator struct {
	redactor *secrets.Redactor
	logger   *slog.Logger
}

// NewValidator creates a validator. redactor may be nil to skip the
// secret check entirely.
func NewValidator(redactor *secrets.Redactor, logger *slog.Logger) *Validator {
	return &Validator{redactor: redactor, logger: logger}
}

// Validate scores a snippet. language may be empty; checkSecrets gates
// the secret scan.
func (v *Validator) Validate(code, language string, checkSecrets bool) *Validation {
	v.logger.Info("Validating code snippet", "chars", len(code), "language", language)

	result := &Validation{
		Issues:      []Issue{},
		Warnings:    []Issue{},
		Suggestions: []Suggestion{},
	}
	score := 100

	if checkSecrets && v.redactor != nil {
		if _, count := v.redactor.Redact(code); count > 0 {
			result.Issues = append(result.Issues, Issue{
				Type:     "SECURITY",
				Severity: "CRITICAL",
				Message:  fmt.Sprintf("Found %d potential secret(s) in code", count),
				Fix:      "Remove hardcoded secrets and use environment variables",
			})
			score -= 30
		}
	}

	switch language {
	case "python":
		issues := validatePython(code)
		result.Issues = append(result.Issues, issues...)
		score -= len(issues) * 5
	case "javascript", "typescript":
		issues := validateJavaScript(code)
		result.Issues = append(result.Issues, issues...)
		score -= len(issues) * 5
	}

	warnings := checkCodeQuality(code)
	result.Warnings = append(result.Warnings, warnings...)
	score -= len(warnings) * 2

	result.Suggestions = append(result.Suggestions, checkBestPractices(code, language)...)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	result.Score = score
	result.Status = statusForScore(score)
	result.Valid = countSeverity(result.Issues, "CRITICAL") == 0
	result.Summary = summarize(result.Issues, result.Warnings)
	return result
}

func statusForScore(score int) string {
	switch {
	case score >= 90:
		return "EXCELLENT"
	case score >= 75:
		return "GOOD"
	case score >= 60:
		return "ACCEPTABLE"
	case score >= 40:
		return "NEEDS_IMPROVEMENT"
	default:
		return "POOR"
	}
}

func validatePython(code string) []Issue {
	var issues []Issue

	deprecated := []struct {
		module string
		fix    string
	}{
		{"imp", "Use importlib instead"},
		{"optparse", "Use argparse instead"},
		{"popen2", "Use subprocess instead"},
	}
	for _, d := range deprecated {
		if strings.Contains(code, "import "+d.module) || strings.Contains(code, "from "+d.module) {
			issues = append(issues, Issue{
				Type:     "DEPRECATED",
				Severity: "WARNING",
				Message:  "Using deprecated module: " + d.module,
				Fix:      d.fix,
			})
		}
	}

	if strings.Contains(code, "except:") || strings.Contains(code, "except :") {
		issues = append(issues, Issue{
			Type:     "ANTI_PATTERN",
			Severity: "WARNING",
			Message:  "Bare except clause catches all exceptions",
			Fix:      "Specify exception types explicitly",
		})
	}

	if strings.Contains(code, "print ") && !strings.Contains(code, "print(") {
		issues = append(issues, Issue{
			Type:     "COMPATIBILITY",
			Severity: "ERROR",
			Message:  "Python 2 style print statement",
			Fix:      "Use print() function for Python 3",
		})
	}

	return issues
}

func validateJavaScript(code string) []Issue {
	var issues []Issue

	if strings.Contains(code, "var ") {
		issues = append(issues, Issue{
			Type:     "DEPRECATED",
			Severity: "WARNING",
			Message:  "Using 'var' instead of 'let' or 'const'",
			Fix:      "Use 'let' for mutable variables or 'const' for constants",
		})
	}

	if strings.Contains(code, "== ") || strings.Contains(code, " ==") {
		issues = append(issues, Issue{
			Type:     "ANTI_PATTERN",
			Severity: "WARNING",
			Message:  "Using loose equality (==) instead of strict (===)",
			Fix:      "Use === for type-safe comparisons",
		})
	}

	return issues
}

func checkCodeQuality(code string) []Issue {
	var warnings []Issue
	lines := strings.Split(code, "\n")

	longLines := 0
	for _, line := range lines {
		if len(line) > 120 {
			longLines++
		}
	}
	if longLines > 0 {
		warnings = append(warnings, Issue{
			Type:     "STYLE",
			Severity: "INFO",
			Message:  fmt.Sprintf("Found %d lines longer than 120 characters", longLines),
			Fix:      "Consider breaking long lines for readability",
		})
	}

	todoCount := 0
	for _, line := range lines {
		if strings.Contains(line, "TODO") || strings.Contains(line, "FIXME") {
			todoCount++
		}
	}
	if todoCount > 0 {
		warnings = append(warnings, Issue{
			Type:     "INCOMPLETE",
			Severity: "INFO",
			Message:  fmt.Sprintf("Found %d TODO/FIXME comment(s)", todoCount),
			Fix:      "Address incomplete implementations",
		})
	}

	if hardcodedIPPattern.MatchString(code) {
		warnings = append(warnings, Issue{
			Type:     "HARDCODED",
			Severity: "WARNING",
			Message:  "Found hardcoded IP address",
			Fix:      "Use configuration or environment variables",
		})
	}

	return warnings
}

func checkBestPractices(code, language string) []Suggestion {
	var suggestions []Suggestion

	if language == "python" {
		if strings.Contains(code, "try:") && strings.Contains(code, "except") {
			suggestions = append(suggestions, Suggestion{Type: "GOOD_PRACTICE", Message: "Includes error handling"})
		} else {
			suggestions = append(suggestions, Suggestion{Type: "SUGGESTION", Message: "Consider adding try-except for error handling"})
		}
	}

	if strings.Contains(code, `"""`) || strings.Contains(code, "'''") || strings.Contains(code, "/**") {
		suggestions = append(suggestions, Suggestion{Type: "GOOD_PRACTICE", Message: "Includes documentation"})
	}

	if language == "python" && strings.Contains(code, "->") {
		suggestions = append(suggestions, Suggestion{Type: "GOOD_PRACTICE", Message: "Uses type hints"})
	}

	return suggestions
}

func countSeverity(issues []Issue, severity string) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func summarize(issues, warnings []Issue) string {
	critical := countSeverity(issues, "CRITICAL")
	errs := countSeverity(issues, "ERROR")
	switch {
	case critical > 0:
		return fmt.Sprintf("Code has %d critical issue(s) that must be fixed", critical)
	case errs > 0:
		return fmt.Sprintf("Code has %d error(s) that should be fixed", errs)
	case len(warnings) > 0:
		return fmt.Sprintf("Code has %d warning(s) to consider", len(warnings))
	default:
		return "Code looks good with no major issues"
	}
}
