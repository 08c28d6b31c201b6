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

const defaultSimplerResults = 5

// Alternative is a search hit scored by how simple its implementation
// looks. Higher means simpler.
type Alternative struct {
	Repo            string  `json:"repo"`
	Path            string  `json:"path"`
	URL             string  `json:"url"`
	Content         string  `json:"content"`
	SimplicityScore int     `json:"simplicityScore"`
	SearchScore     float64 `json:"searchScore"`
}

// SimplerResult is the outcome of a simpler-alternative search.
type SimplerResult struct {
	Feature      string        `json:"feature"`
	Language     string        `json:"language,omitempty"`
	TotalFound   int           `json:"totalFound"`
	Alternatives []Alternative `json:"alternatives"`
}

// SimplerFinder locates minimal implementations of a feature so callers
// can avoid overengineering.
type SimplerFinder struct {
	searcher *Searcher
	cache    Cache
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewSimplerFinder creates a finder over an existing searcher.
func NewSimplerFinder(searcher *Searcher, cache Cache, logger *slog.Logger, cacheTTL time.Duration) *SimplerFinder {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &SimplerFinder{searcher: searcher, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// FindSimpler searches for stripped-down implementations of feature and
// ranks the merged hits by simplicity.
func (f *SimplerFinder) FindSimpler(ctx context.Context, feature, language string, maxResults int) (*SimplerResult, error) {
	if feature == "" {
		return nil, errors.NewInvalidParameter("feature", "a feature to simplify is required")
	}
	if maxResults < 1 {
		maxResults = defaultSimplerResults
	}

	langKey := language
	if langKey == "" {
		langKey = "any"
	}
	cacheKey := fmt.Sprintf("simpler_%s_%s", feature, langKey)

	if f.cache != nil {
		var cached SimplerResult
		if ok, err := f.cache.GetJSON(storage.SearchCache, cacheKey, &cached); err != nil {
			f.logger.Warn("Simpler cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			cached.Alternatives = capAlternatives(cached.Alternatives, maxResults)
			return &cached, nil
		}
	}

	queries := []string{
		feature + " simple",
		feature + " minimal",
		feature + " basic example",
	}

	seen := make(map[string]bool)
	var alternatives []Alternative
	for _, query := range queries {
		hits, err := f.searcher.Search(ctx, query, language, maxResults)
		if err != nil {
			f.logger.Warn("Simpler search failed", "query", query, "error", err)
			continue
		}
		for _, hit := range hits {
			id := hit.Repo + ":" + hit.Path
			if seen[id] {
				continue
			}
			seen[id] = true
			alternatives = append(alternatives, Alternative{
				Repo:            hit.Repo,
				Path:            hit.Path,
				URL:             hit.URL,
				Content:         hit.Content,
				SimplicityScore: scoreSimplicity(hit),
				SearchScore:     hit.Score,
			})
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].SimplicityScore > alternatives[j].SimplicityScore
	})

	result := &SimplerResult{
		Feature:      feature,
		Language:     language,
		TotalFound:   len(alternatives),
		Alternatives: alternatives,
	}

	if f.cache != nil {
		if err := f.cache.SetJSON(storage.SearchCache, cacheKey, result, f.cacheTTL); err != nil {
			f.logger.Warn("Failed to cache simpler alternatives", "key", cacheKey, "error", err)
		}
	}

	result.Alternatives = capAlternatives(result.Alternatives, maxResults)
	return result, nil
}

func capAlternatives(alts []Alternative, n int) []Alternative {
	if len(alts) > n {
		return alts[:n]
	}
	return alts
}

// scoreSimplicity rates code on a 0+ scale where higher means simpler:
// short files, few imports, few declarations, and self-describing
// wording all raise the score.
func scoreSimplicity(hit Result) int {
	content := hit.Content
	lines := strings.Split(content, "\n")
	score := 100

	lineCount := 0
	importCount := 0
	commentCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lineCount++
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "require(") {
			importCount++
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") ||
			strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			commentCount++
		}
	}

	switch {
	case lineCount < 50:
		score += 20
	case lineCount < 100:
		score += 10
	case lineCount > 200:
		score -= 20
	}

	switch {
	case importCount < 5:
		score += 15
	case importCount > 15:
		score -= 15
	}

	lower := strings.ToLower(content)
	for _, keyword := range []string{"simple", "minimal", "basic", "easy", "quick"} {
		if strings.Contains(lower, keyword) {
			score += 10
		}
	}
	for _, keyword := range []string{"advanced", "complex", "enterprise", "production"} {
		if strings.Contains(lower, keyword) {
			score -= 10
		}
	}

	if float64(commentCount) > float64(lineCount)*0.2 {
		score += 10
	}

	lowerPath := strings.ToLower(hit.Path)
	if strings.Contains(lowerPath, "example") {
		score += 15
	}
	if strings.Contains(lowerPath, "tutorial") {
		score += 15
	}

	declCount := strings.Count(content, "class ") + strings.Count(content, "function ") + strings.Count(content, "def ")
	switch {
	case declCount < 3:
		score += 10
	case declCount > 10:
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	return score
}
