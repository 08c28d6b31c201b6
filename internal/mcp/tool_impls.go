package mcp

import (
	"context"
	"fmt"
	"strings"

	"ghscout/internal/envelope"
	"ghscout/internal/errors"
	"ghscout/internal/license"
	"ghscout/internal/repomap"
	"ghscout/internal/search"
)

const (
	defaultSearchResults = 10
	defaultMapSymbols    = 50
	usagePreviewChars    = 1000
	simplerPreviewChars  = 800
)

func (s *Server) handleSearchPatterns(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, errors.NewInvalidParameter("query", "required")
	}
	language := stringArg(args, "language")
	maxResults := intArg(args, "max_results", defaultSearchResults)

	results, err := s.toolset.Searcher.Search(ctx, query, language, maxResults)
	if err != nil {
		return nil, err
	}

	return s.newEnvelope().Data(map[string]interface{}{
		"report":  formatSearchResults(query, results),
		"results": results,
	}).Build(), nil
}

func formatSearchResults(query string, results []search.Result) string {
	lines := []string{fmt.Sprintf("Found %d results for: %s\n", len(results), query)}
	for i, r := range results {
		lines = append(lines,
			"\n"+strings.Repeat("=", 60),
			fmt.Sprintf("Result %d: %s", i+1, r.Repo),
			"File: "+r.Path,
			"URL: "+r.URL,
			fmt.Sprintf("Score: %.2f", r.Score),
			"\nContent:\n"+strings.Repeat("-", 60),
			r.Content,
		)
	}
	return strings.Join(lines, "\n")
}

func (s *Server) handleGetRepoMap(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	owner := stringArg(args, "owner")
	repo := stringArg(args, "repo")
	if owner == "" || repo == "" {
		return nil, errors.NewInvalidParameter("owner/repo", "both are required")
	}
	maxSymbols := intArg(args, "max_symbols", defaultMapSymbols)
	if maxSymbols < 1 {
		maxSymbols = defaultMapSymbols
	}

	result, err := s.toolset.Mapper.BuildMap(ctx, owner, repo, maxSymbols)
	if err != nil {
		return nil, err
	}

	b := s.newEnvelope().Data(map[string]interface{}{
		"report": formatRepoMap(result),
		"map":    result,
	})
	if result.FromCache {
		b.CacheHit(fmt.Sprintf("%s_%s@%s", owner, repo, result.CommitSHA))
	}
	b.WithTruncation(result.DisplayedSymbols < result.TotalSymbols,
		result.DisplayedSymbols, result.TotalSymbols, "max-symbols")
	return b.Build(), nil
}

func formatRepoMap(r *repomap.Result) string {
	return strings.Join([]string{
		"Repository: " + r.Repo,
		fmt.Sprintf("Files analyzed: %d", r.FilesAnalyzed),
		fmt.Sprintf("Total symbols: %d", r.TotalSymbols),
		fmt.Sprintf("Displayed symbols: %d", r.DisplayedSymbols),
		"",
		r.Map,
	}, "\n")
}

func (s *Server) handleExtractFunction(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	fileURL := stringArg(args, "file_url")
	functionName := stringArg(args, "function_name")
	if fileURL == "" || functionName == "" {
		return nil, errors.NewInvalidParameter("file_url/function_name", "both are required")
	}

	result, err := s.toolset.Extractor.Extract(ctx, fileURL, functionName)
	if err != nil {
		return nil, err
	}

	lines := []string{
		"Function: " + functionName,
		"Type: " + result.Kind,
		fmt.Sprintf("Lines: %d-%d", result.StartLine, result.EndLine),
		"Signature: " + result.Signature,
	}
	if result.Warning != "" {
		lines = append(lines, "\nWarning: "+result.Warning)
	}
	lines = append(lines,
		fmt.Sprintf("\nCode (with %d lines context):", result.ContextLines),
		strings.Repeat("=", 60),
		result.Code,
	)

	b := s.newEnvelope().Data(map[string]interface{}{
		"report":   strings.Join(lines, "\n"),
		"function": result,
	})
	if result.Warning != "" {
		b.WarningWithCode("SECRETS_REDACTED", result.Warning)
	}
	return b.Build(), nil
}

func (s *Server) handleCheckLicense(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	owner := stringArg(args, "owner")
	repo := stringArg(args, "repo")
	if owner == "" || repo == "" {
		return nil, errors.NewInvalidParameter("owner/repo", "both are required")
	}

	verdict, err := s.toolset.Licenses.Check(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	b := s.newEnvelope().Data(map[string]interface{}{
		"report":  formatLicenseVerdict(verdict),
		"verdict": verdict,
	})
	if verdict.FromCache {
		b.CacheHit(fmt.Sprintf("license_%s_%s", owner, repo))
	}
	return b.Build(), nil
}

func formatLicenseVerdict(v *license.Verdict) string {
	lines := []string{
		"Repository: " + v.Repo,
		"License: " + v.License,
		"Safety: " + string(v.Safety),
		"Source: " + v.Source,
	}
	if v.Details != "" {
		lines = append(lines, "Details: "+v.Details)
	}
	lines = append(lines, "\n"+license.Advice(v.Safety))
	return strings.Join(lines, "\n")
}

func (s *Server) handleFindCompatiblePatterns(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	patterns := stringsArg(args, "patterns")
	if len(patterns) < 2 {
		return nil, errors.NewInvalidParameter("patterns", "provide at least 2 patterns to find together")
	}
	language := stringArg(args, "language")
	minStars := intArg(args, "min_stars", 0)
	maxResults := intArg(args, "max_results", 0)

	result, err := s.toolset.Compatible.FindCompatible(ctx, patterns, language, minStars, maxResults)
	if err != nil {
		return nil, err
	}

	return s.newEnvelope().Data(map[string]interface{}{
		"report":     formatCompatiblePatterns(result),
		"compatible": result,
	}).Build(), nil
}

func formatCompatiblePatterns(r *search.CompatibleResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d repositories with compatible patterns: %s\n\n",
		r.TotalFound, strings.Join(r.PatternsSearched, ", "))
	if r.Language != "" {
		fmt.Fprintf(&sb, "Language: %s\n\n", r.Language)
	}
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	for i, repo := range r.Repositories {
		fmt.Fprintf(&sb, "\nRepository %d: %s\n", i+1, repo.Repo)
		fmt.Fprintf(&sb, "Stars: %d\n", repo.Stars)
		fmt.Fprintf(&sb, "Compatibility Score: %.0f%%\n", repo.CompatibilityScore*100)
		fmt.Fprintf(&sb, "Patterns Found: %s\n", strings.Join(repo.PatternsFound, ", "))
		fmt.Fprintf(&sb, "URL: %s\n", repo.URL)
		if repo.Description != "" {
			fmt.Fprintf(&sb, "Description: %s\n", repo.Description)
		}

		fmt.Fprintf(&sb, "\nKey Files (%d total):\n", len(repo.Files))
		files := repo.Files
		if len(files) > 5 {
			files = files[:5]
		}
		for _, f := range files {
			fmt.Fprintf(&sb, "  - %s\n", f.Path)
			fmt.Fprintf(&sb, "    %s\n", f.URL)
		}
		sb.WriteString(strings.Repeat("-", 60) + "\n")
	}
	return sb.String()
}

func (s *Server) handleGetImplementationGuide(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	feature := stringArg(args, "feature")
	if feature == "" {
		return nil, errors.NewInvalidParameter("feature", "required")
	}
	language := stringArg(args, "language")
	framework := stringArg(args, "framework")
	maxExamples := intArg(args, "max_examples", 0)

	guide, err := s.toolset.Guide.Generate(ctx, feature, language, framework, maxExamples)
	if err != nil {
		return nil, err
	}

	return s.newEnvelope().Data(map[string]interface{}{
		"report": formatImplementationGuide(guide),
		"guide":  guide,
	}).Build(), nil
}

func formatImplementationGuide(g *search.Guide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Implementation Guide: %s\n\n", g.Feature)
	if g.Language != "" {
		fmt.Fprintf(&sb, "Language: %s\n", g.Language)
	}
	if g.Framework != "" {
		fmt.Fprintf(&sb, "Framework: %s\n", g.Framework)
	}
	sb.WriteString("\n" + strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&sb, "## Overview\n%s\n\n", g.Overview)

	if len(g.Dependencies) > 0 {
		sb.WriteString("## Dependencies\n")
		for _, dep := range g.Dependencies {
			fmt.Fprintf(&sb, "  %s\n", dep)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Implementation Steps\n\n")
	for _, step := range g.Steps {
		fmt.Fprintf(&sb, "### Step %d: %s\n", step.Step, step.Title)
		fmt.Fprintf(&sb, "%s\n", step.Description)
		fmt.Fprintf(&sb, "*%s*\n\n", step.Details)
	}

	if len(g.Patterns) > 0 {
		sb.WriteString("## Common Patterns\n")
		for _, p := range g.Patterns {
			fmt.Fprintf(&sb, "  - %s\n", p)
		}
		sb.WriteString("\n")
	}

	if len(g.Tips) > 0 {
		sb.WriteString("## Implementation Tips\n")
		for _, tip := range g.Tips {
			fmt.Fprintf(&sb, "  - %s\n", tip)
		}
		sb.WriteString("\n")
	}

	if len(g.Examples) > 0 {
		sb.WriteString("## Working Examples\n\n")
		for i, ex := range g.Examples {
			fmt.Fprintf(&sb, "### Example %d: %s\n", i+1, ex.Repo)
			fmt.Fprintf(&sb, "File: %s\n", ex.Path)
			fmt.Fprintf(&sb, "URL: %s\n\n", ex.URL)
			sb.WriteString("```\n")
			if len(ex.Content) > usagePreviewChars {
				sb.WriteString(ex.Content[:usagePreviewChars])
				sb.WriteString("\n... (truncated)")
			} else {
				sb.WriteString(ex.Content)
			}
			sb.WriteString("\n```\n\n")
		}
	}
	return sb.String()
}

func (s *Server) handleFindSimplerAlternative(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	feature := stringArg(args, "feature")
	if feature == "" {
		return nil, errors.NewInvalidParameter("feature", "required")
	}
	language := stringArg(args, "language")
	maxResults := intArg(args, "max_results", 0)

	result, err := s.toolset.Simpler.FindSimpler(ctx, feature, language, maxResults)
	if err != nil {
		return nil, err
	}

	return s.newEnvelope().Data(map[string]interface{}{
		"report":       formatSimplerAlternatives(result),
		"alternatives": result,
	}).Build(), nil
}

func formatSimplerAlternatives(r *search.SimplerResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Simpler Alternatives for: %s\n\n", r.Feature)
	if r.Language != "" {
		fmt.Fprintf(&sb, "Language: %s\n", r.Language)
	}
	fmt.Fprintf(&sb, "Found %d simpler implementations\n", r.TotalFound)
	sb.WriteString("Sorted by simplicity (simplest first)\n\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	for i, alt := range r.Alternatives {
		fmt.Fprintf(&sb, "## Alternative %d: %s\n", i+1, alt.Repo)
		fmt.Fprintf(&sb, "**Simplicity Score: %d/100**\n", alt.SimplicityScore)
		fmt.Fprintf(&sb, "File: %s\n", alt.Path)
		fmt.Fprintf(&sb, "URL: %s\n\n", alt.URL)

		lineCount := 0
		for _, line := range strings.Split(alt.Content, "\n") {
			if strings.TrimSpace(line) != "" {
				lineCount++
			}
		}
		sb.WriteString("**Why this is simpler:**\n")
		fmt.Fprintf(&sb, "  - Only %d lines of code\n", lineCount)
		lower := strings.ToLower(alt.Content)
		if strings.Contains(lower, "simple") || strings.Contains(lower, "minimal") {
			sb.WriteString("  - Described as simple/minimal\n")
		}
		if strings.Contains(strings.ToLower(alt.Path), "example") {
			sb.WriteString("  - From examples/tutorials\n")
		}

		sb.WriteString("\n**Code Preview:**\n```\n")
		if len(alt.Content) > simplerPreviewChars {
			sb.WriteString(alt.Content[:simplerPreviewChars])
			sb.WriteString("\n... (truncated)")
		} else {
			sb.WriteString(alt.Content)
		}
		sb.WriteString("\n```\n\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n\n")
	}

	if len(r.Alternatives) == 0 {
		sb.WriteString("No simpler alternatives found. Try broadening your search.\n")
	}
	return sb.String()
}

func (s *Server) handleFindUsageExamples(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	target := stringArg(args, "function_or_library")
	if target == "" {
		return nil, errors.NewInvalidParameter("function_or_library", "required")
	}
	language := stringArg(args, "language")
	contextHint := stringArg(args, "context")
	maxResults := intArg(args, "max_results", 0)

	examples, err := s.toolset.Usage.FindUsage(ctx, target, language, contextHint, maxResults)
	if err != nil {
		return nil, err
	}

	return s.newEnvelope().Data(map[string]interface{}{
		"report":   formatUsageExamples(target, language, contextHint, examples),
		"examples": examples,
	}).Build(), nil
}

func formatUsageExamples(target, language, contextHint string, examples []search.UsageExample) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Usage Examples: %s\n\n", target)
	if language != "" {
		fmt.Fprintf(&sb, "Language: %s\n", language)
	}
	if contextHint != "" {
		fmt.Fprintf(&sb, "Context: %s\n", contextHint)
	}
	fmt.Fprintf(&sb, "\nFound %d usage examples\n", len(examples))
	sb.WriteString("Sorted by relevance (most relevant first)\n\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	for i, ex := range examples {
		fmt.Fprintf(&sb, "## Example %d: %s\n", i+1, ex.Repo)
		fmt.Fprintf(&sb, "**Usage Score: %d/100**\n", ex.UsageScore)
		fmt.Fprintf(&sb, "File: %s\n", ex.Path)
		fmt.Fprintf(&sb, "URL: %s\n\n", ex.URL)

		if len(ex.UsagePatterns) > 0 {
			sb.WriteString("**Usage Patterns:**\n")
			for _, p := range ex.UsagePatterns {
				fmt.Fprintf(&sb, "  - %s\n", p)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("**Code:**\n```\n")
		if len(ex.Content) > usagePreviewChars {
			sb.WriteString(ex.Content[:usagePreviewChars])
			sb.WriteString("\n... (truncated)")
		} else {
			sb.WriteString(ex.Content)
		}
		sb.WriteString("\n```\n\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n\n")
	}

	if len(examples) == 0 {
		sb.WriteString("No usage examples found. Try:\n")
		sb.WriteString("  - A more common function name\n")
		sb.WriteString("  - Dropping the language filter\n")
		sb.WriteString("  - A different context hint\n")
	}
	return sb.String()
}

func (s *Server) handleValidateCodeSnippet(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	code := stringArg(args, "code")
	if code == "" {
		return nil, errors.NewInvalidParameter("code", "required")
	}
	language := stringArg(args, "language")
	checkSecrets := boolArg(args, "check_secrets", true)

	result := s.toolset.Validator.Validate(code, language, checkSecrets)

	return s.newEnvelope().Data(map[string]interface{}{
		"report":     formatValidation(result),
		"validation": result,
	}).Build(), nil
}

func formatValidation(v *search.Validation) string {
	var sb strings.Builder
	sb.WriteString("# Code Validation Results\n\n")
	fmt.Fprintf(&sb, "**Status: %s**\n", v.Status)
	fmt.Fprintf(&sb, "**Score: %d/100**\n", v.Score)
	if v.Valid {
		sb.WriteString("**Valid: Yes**\n\n")
	} else {
		sb.WriteString("**Valid: No**\n\n")
	}
	fmt.Fprintf(&sb, "**Summary:** %s\n\n", v.Summary)
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(v.Issues) > 0 {
		sb.WriteString("## Issues\n\n")
		for _, issue := range v.Issues {
			fmt.Fprintf(&sb, "**%s** - %s\n", issue.Severity, issue.Message)
			if issue.Fix != "" {
				fmt.Fprintf(&sb, "   *Fix: %s*\n", issue.Fix)
			}
			sb.WriteString("\n")
		}
	}

	if len(v.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range v.Warnings {
			fmt.Fprintf(&sb, "%s\n", w.Message)
			if w.Fix != "" {
				fmt.Fprintf(&sb, "   *%s*\n", w.Fix)
			}
			sb.WriteString("\n")
		}
	}

	if len(v.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, sg := range v.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", sg.Message)
		}
	}

	if len(v.Issues) == 0 && len(v.Warnings) == 0 {
		sb.WriteString("\n**No issues found! Code looks good.**\n")
	}
	return sb.String()
}
