package secrets

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Redactor scans snippet text for credential material and replaces it
// with typed placeholders.
type Redactor struct {
	patterns  []Pattern
	allowlist *Allowlist
	logger    *slog.Logger
}

// NewRedactor creates a redactor with the builtin patterns. allowlist
// may be nil.
func NewRedactor(allowlist *Allowlist, logger *slog.Logger) *Redactor {
	return &Redactor{
		patterns:  BuiltinPatterns,
		allowlist: allowlist,
		logger:    logger,
	}
}

// Scan returns the findings in text without modifying it. Line numbers
// are 1-based.
func (r *Redactor) Scan(text string) []Finding {
	var findings []Finding
	for i, line := range strings.Split(text, "\n") {
		for pi := range r.patterns {
			p := &r.patterns[pi]
			for _, loc := range p.Regex.FindAllStringSubmatchIndex(line, -1) {
				match := line[loc[0]:loc[1]]
				// When the pattern captures a group, entropy is judged
				// on the captured value, not the surrounding syntax.
				value := match
				if len(loc) > 2 && loc[2] >= 0 {
					value = line[loc[2]:loc[3]]
				}
				if p.MinEntropy > 0 && !IsProbablySecret(value, p.MinEntropy) {
					continue
				}
				f := Finding{
					Line:     i + 1,
					Type:     p.Type,
					Severity: p.Severity,
					Rule:     p.Name,
					Match:    match,
				}
				if r.allowlist.IsSuppressed(&f) {
					continue
				}
				findings = append(findings, f)
			}
		}
	}
	return findings
}

// Redact replaces every finding in text with a typed placeholder and
// reports how many replacements were made.
func (r *Redactor) Redact(text string) (string, int) {
	findings := r.Scan(text)
	if len(findings) == 0 {
		return text, 0
	}

	// Longer matches first, so partial overlaps cannot leave fragments.
	sort.SliceStable(findings, func(i, j int) bool {
		return len(findings[i].Match) > len(findings[j].Match)
	})

	replaced := text
	count := 0
	seen := make(map[string]bool)
	for _, f := range findings {
		if seen[f.Match] {
			continue
		}
		seen[f.Match] = true
		placeholder := fmt.Sprintf("[REDACTED:%s]", f.Type)
		n := strings.Count(replaced, f.Match)
		replaced = strings.ReplaceAll(replaced, f.Match, placeholder)
		count += n
	}

	if r.logger != nil {
		r.logger.Debug("Redacted secrets from snippet", "count", count)
	}
	return replaced, count
}
