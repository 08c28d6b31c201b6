package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ghscout/internal/storage"
)

const defaultUsageResults = 5

// UsageExample is one real-world usage of a function, scored by how
// useful it is likely to be as a reference.
type UsageExample struct {
	Repo          string   `json:"repo"`
	Path          string   `json:"path"`
	URL           string   `json:"url"`
	Content       string   `json:"content"`
	UsageScore    int      `json:"usageScore"`
	UsagePatterns []string `json:"usagePatterns"`
}

// UsageFinder locates usage examples for a named function by running a
// small set of searches and ranking the merged hits.
type UsageFinder struct {
	searcher *Searcher
	cache    Cache
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewUsageFinder creates a finder over an existing searcher.
func NewUsageFinder(searcher *Searcher, cache Cache, logger *slog.Logger, cacheTTL time.Duration) *UsageFinder {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &UsageFinder{searcher: searcher, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// FindUsage searches for examples of functionName in use. contextHint
// narrows the search ("flask", "cli", ...) and may be empty.
func (f *UsageFinder) FindUsage(ctx context.Context, functionName, language, contextHint string, maxResults int) ([]UsageExample, error) {
	if maxResults < 1 {
		maxResults = defaultUsageResults
	}

	langKey := language
	if langKey == "" {
		langKey = "any"
	}
	ctxKey := contextHint
	if ctxKey == "" {
		ctxKey = "none"
	}
	cacheKey := fmt.Sprintf("usage_%s_%s_%s", functionName, langKey, ctxKey)

	if f.cache != nil {
		var cached []UsageExample
		if ok, err := f.cache.GetJSON(storage.SearchCache, cacheKey, &cached); err != nil {
			f.logger.Warn("Usage cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			return capExamples(cached, maxResults), nil
		}
	}

	queries := []string{functionName, functionName + " example"}
	if contextHint != "" {
		queries = append(queries, functionName+" "+contextHint)
	}

	seen := make(map[string]bool)
	var examples []UsageExample
	for _, query := range queries {
		hits, err := f.searcher.Search(ctx, query, language, maxResults)
		if err != nil {
			f.logger.Warn("Usage search failed", "query", query, "error", err)
			continue
		}
		for _, hit := range hits {
			id := hit.Repo + ":" + hit.Path
			if seen[id] {
				continue
			}
			seen[id] = true
			examples = append(examples, UsageExample{
				Repo:          hit.Repo,
				Path:          hit.Path,
				URL:           hit.URL,
				Content:       hit.Content,
				UsageScore:    scoreUsage(hit, functionName),
				UsagePatterns: extractUsagePatterns(hit.Content, functionName),
			})
		}
	}

	sort.SliceStable(examples, func(i, j int) bool {
		return examples[i].UsageScore > examples[j].UsageScore
	})

	if f.cache != nil {
		if err := f.cache.SetJSON(storage.SearchCache, cacheKey, examples, f.cacheTTL); err != nil {
			f.logger.Warn("Failed to cache usage examples", "key", cacheKey, "error", err)
		}
	}

	return capExamples(examples, maxResults), nil
}

func capExamples(examples []UsageExample, n int) []UsageExample {
	if len(examples) > n {
		return examples[:n]
	}
	return examples
}

// scoreUsage estimates how instructive a hit is as a usage example.
func scoreUsage(hit Result, functionName string) int {
	score := 50

	lowerContent := strings.ToLower(hit.Content)
	occurrences := strings.Count(lowerContent, strings.ToLower(functionName))
	bonus := occurrences * 5
	if bonus > 20 {
		bonus = 20
	}
	score += bonus

	lowerPath := strings.ToLower(hit.Path)
	for _, keyword := range []string{"example", "tutorial", "demo", "sample"} {
		if strings.Contains(lowerPath, keyword) {
			score += 15
			break
		}
	}

	lines := strings.Split(hit.Content, "\n")
	if len(lines) > 0 {
		comments := 0
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
				strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
				comments++
			}
		}
		score += int(float64(comments) / float64(len(lines)) * 20)
	}

	if strings.Contains(hit.Content, "import ") || strings.Contains(hit.Content, "require(") {
		score += 5
	}
	if strings.Contains(hit.Content, "def ") || strings.Contains(hit.Content, "function ") {
		score += 5
	}
	if strings.Contains(lowerPath, "test") || strings.Contains(lowerPath, "spec") {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// extractUsagePatterns labels how the function is being used in the hit.
func extractUsagePatterns(content, functionName string) []string {
	var patterns []string
	add := func(p string) {
		for _, existing := range patterns {
			if existing == p {
				return
			}
		}
		patterns = append(patterns, p)
	}

	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, functionName) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import") || strings.HasPrefix(trimmed, "from"):
			add("Import statement")
		case strings.Contains(trimmed, functionName+"("):
			add("Function call")
		}
		if strings.Contains(trimmed, "=") && strings.Contains(trimmed, functionName) {
			add("Variable assignment")
		}
		if strings.Contains(trimmed, "await") || strings.Contains(trimmed, "async") {
			add("Async usage")
		}
		if strings.Contains(trimmed, "try") || strings.Contains(trimmed, "except") || strings.Contains(trimmed, "catch") {
			add("With error handling")
		}
	}

	if strings.Contains(strings.ToLower(content), "test") {
		add("Test example")
	}
	return patterns
}
