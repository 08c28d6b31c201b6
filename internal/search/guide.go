package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ghscout/internal/errors"
	"ghscout/internal/storage"
)

const defaultGuideExamples = 3

// GuideStep is one step of an implementation guide.
type GuideStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Details     string `json:"details"`
}

// Guide is a generated implementation guide backed by real examples.
type Guide struct {
	Feature      string      `json:"feature"`
	Language     string      `json:"language,omitempty"`
	Framework    string      `json:"framework,omitempty"`
	Overview     string      `json:"overview"`
	Dependencies []string    `json:"dependencies"`
	Steps        []GuideStep `json:"steps"`
	Patterns     []string    `json:"patterns"`
	Examples     []Result    `json:"examples"`
	Tips         []string    `json:"tips"`
}

// GuideGenerator builds step-by-step implementation guides from
// searched working code.
type GuideGenerator struct {
	searcher *Searcher
	cache    Cache
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewGuideGenerator creates a generator over an existing searcher.
func NewGuideGenerator(searcher *Searcher, cache Cache, logger *slog.Logger, cacheTTL time.Duration) *GuideGenerator {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &GuideGenerator{searcher: searcher, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Generate produces a guide for implementing feature. framework narrows
// the search ("fastapi", "express", ...) and may be empty.
func (g *GuideGenerator) Generate(ctx context.Context, feature, language, framework string, maxExamples int) (*Guide, error) {
	if feature == "" {
		return nil, errors.NewInvalidParameter("feature", "a feature to implement is required")
	}
	if maxExamples < 1 {
		maxExamples = defaultGuideExamples
	}

	langKey := language
	if langKey == "" {
		langKey = "any"
	}
	fwKey := framework
	if fwKey == "" {
		fwKey = "any"
	}
	cacheKey := fmt.Sprintf("guide_%s_%s_%s", feature, langKey, fwKey)

	if g.cache != nil {
		var cached Guide
		if ok, err := g.cache.GetJSON(storage.SearchCache, cacheKey, &cached); err != nil {
			g.logger.Warn("Guide cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			return &cached, nil
		}
	}

	query := feature
	if framework != "" {
		query += " " + framework
	}
	g.logger.Info("Generating implementation guide", "feature", feature, "query", query)

	examples, err := g.searcher.Search(ctx, query, language, maxExamples)
	if err != nil {
		return nil, err
	}

	langLabel := language
	if langLabel == "" {
		langLabel = "any language"
	}
	if len(examples) > 3 {
		examples = examples[:3]
	}
	guide := &Guide{
		Feature:      feature,
		Language:     language,
		Framework:    framework,
		Overview:     fmt.Sprintf("Implementation guide for %s in %s", feature, langLabel),
		Dependencies: extractDependencies(examples, language),
		Steps:        guideSteps(feature),
		Patterns:     extractGuidePatterns(examples),
		Examples:     examples,
		Tips:         guideTips(language),
	}

	if g.cache != nil {
		if err := g.cache.SetJSON(storage.SearchCache, cacheKey, guide, g.cacheTTL); err != nil {
			g.logger.Warn("Failed to cache implementation guide", "key", cacheKey, "error", err)
		}
	}
	return guide, nil
}

func guideSteps(feature string) []GuideStep {
	return []GuideStep{
		{
			Step:        1,
			Title:       "Install Dependencies",
			Description: fmt.Sprintf("Install required packages for %s", feature),
			Details:     "Check the examples below for specific packages needed",
		},
		{
			Step:        2,
			Title:       "Configure Settings",
			Description: "Set up configuration files and environment variables",
			Details:     "Create config files, set environment variables, and establish secrets management",
		},
		{
			Step:        3,
			Title:       "Implement Core Logic",
			Description: fmt.Sprintf("Write the main %s logic", feature),
			Details:     "See code examples below for implementation patterns",
		},
		{
			Step:        4,
			Title:       "Integrate with Application",
			Description: "Connect the feature to your application",
			Details:     "Add endpoints, middleware, or hooks as needed",
		},
		{
			Step:        5,
			Title:       "Add Tests",
			Description: "Write tests to verify functionality",
			Details:     "Include unit tests and integration tests",
		},
		{
			Step:        6,
			Title:       "Handle Errors",
			Description: "Add proper error handling and validation",
			Details:     "Implement try-catch blocks, validation, and user-friendly error messages",
		},
	}
}

// extractDependencies collects the import lines the examples share,
// up to five per example and ten overall.
func extractDependencies(examples []Result, language string) []string {
	deps := make(map[string]bool)
	for _, ex := range examples {
		var importLines []string
		for _, line := range strings.Split(ex.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			switch language {
			case "python":
				if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
					importLines = append(importLines, trimmed)
				}
			case "javascript", "typescript":
				if strings.Contains(line, "import ") || strings.Contains(line, "require(") {
					importLines = append(importLines, trimmed)
				}
			}
		}
		if len(importLines) > 5 {
			importLines = importLines[:5]
		}
		for _, l := range importLines {
			deps[l] = true
		}
	}

	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func extractGuidePatterns(examples []Result) []string {
	var patterns []string
	if len(examples) >= 2 {
		patterns = append(patterns, "Multiple implementations found - this is a well-established pattern")
	}

	var b strings.Builder
	for _, ex := range examples {
		b.WriteString(ex.Content)
		b.WriteString(" ")
	}
	all := strings.ToLower(b.String())

	if strings.Contains(all, "async") || strings.Contains(all, "await") {
		patterns = append(patterns, "Uses asynchronous patterns")
	}
	if strings.Contains(all, "test") {
		patterns = append(patterns, "Includes test examples")
	}
	if strings.Contains(all, "config") || strings.Contains(all, "settings") {
		patterns = append(patterns, "Uses configuration management")
	}
	if strings.Contains(all, "error") || strings.Contains(all, "exception") {
		patterns = append(patterns, "Implements error handling")
	}
	if strings.Contains(all, "validate") || strings.Contains(all, "validation") {
		patterns = append(patterns, "Includes validation logic")
	}
	return patterns
}

func guideTips(language string) []string {
	tips := []string{
		"Start with the simplest working example",
		"Add error handling early in development",
		"Write tests as you implement features",
		"Use environment variables for sensitive data",
		"Follow the patterns used in popular repositories",
	}
	switch language {
	case "python":
		tips = append(tips,
			"Use type hints for better code clarity",
			"Consider using Pydantic for validation")
	case "javascript", "typescript":
		tips = append(tips,
			"Use async/await for asynchronous operations",
			"Consider using TypeScript for type safety")
	}
	return tips
}
