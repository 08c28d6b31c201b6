package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"ghscout/internal/errors"
	"ghscout/internal/secrets"
	"ghscout/internal/storage"
)

const (
	defaultCompatibleResults  = 5
	defaultCompatibleMinStars = 10
	// Repositories must contain at least this share of the requested
	// patterns to count as compatible.
	compatibleThreshold = 0.7
)

// FileRef points at one file of a repository.
type FileRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// CompatibleRepo is one repository that implements several of the
// requested patterns together.
type CompatibleRepo struct {
	Repo               string    `json:"repo"`
	Stars              int       `json:"stars"`
	Description        string    `json:"description"`
	URL                string    `json:"url"`
	Files              []FileRef `json:"files"`
	PatternsFound      []string  `json:"patternsFound"`
	CompatibilityScore float64   `json:"compatibilityScore"`
}

// CompatibleResult is the outcome of a compatible-patterns search.
type CompatibleResult struct {
	PatternsSearched []string         `json:"patternsSearched"`
	Language         string           `json:"language,omitempty"`
	TotalFound       int              `json:"totalFound"`
	Repositories     []CompatibleRepo `json:"repositories"`
}

// CompatibleFinder locates repositories where multiple patterns appear
// together, for callers integrating several features at once.
type CompatibleFinder struct {
	client   Fetcher
	cache    Cache
	redactor *secrets.Redactor
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewCompatibleFinder creates a finder. cache and redactor may be nil.
func NewCompatibleFinder(client Fetcher, cache Cache, redactor *secrets.Redactor, logger *slog.Logger, cacheTTL time.Duration) *CompatibleFinder {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &CompatibleFinder{client: client, cache: cache, redactor: redactor, logger: logger, cacheTTL: cacheTTL}
}

// FindCompatible searches for repositories containing all the given
// patterns. At least two patterns are required. minStars filters out
// low-quality repositories (0 means the default of 10).
func (f *CompatibleFinder) FindCompatible(ctx context.Context, patterns []string, language string, minStars, maxResults int) (*CompatibleResult, error) {
	if len(patterns) < 2 {
		return nil, errors.NewInvalidParameter("patterns", "at least 2 patterns are required")
	}
	if minStars <= 0 {
		minStars = defaultCompatibleMinStars
	}
	if maxResults < 1 {
		maxResults = defaultCompatibleResults
	}

	sorted := append([]string(nil), patterns...)
	sort.Strings(sorted)
	langKey := language
	if langKey == "" {
		langKey = "any"
	}
	cacheKey := fmt.Sprintf("compatible_%s_%s_%d", strings.Join(sorted, "_"), langKey, minStars)

	if f.cache != nil {
		var cached CompatibleResult
		if ok, err := f.cache.GetJSON(storage.SearchCache, cacheKey, &cached); err != nil {
			f.logger.Warn("Compatible cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			cached.Repositories = capRepos(cached.Repositories, maxResults)
			return &cached, nil
		}
	}

	queryParts := append([]string(nil), patterns...)
	if language != "" {
		queryParts = append(queryParts, "language:"+language)
	}
	queryParts = append(queryParts, "stars:>="+strconv.Itoa(minStars))
	query := strings.Join(queryParts, " ")

	f.logger.Info("Searching for compatible patterns", "patterns", patterns, "query", query)

	// Over-fetch so per-repository grouping still fills the result set.
	found, err := f.client.SearchCode(ctx, query, maxResults*3)
	if err != nil {
		return nil, err
	}

	var order []string
	byRepo := make(map[string]*CompatibleRepo)
	patternsByRepo := make(map[string]map[string]bool)
	for _, item := range found.Items {
		fullName := item.Repository.FullName
		if fullName == "" {
			continue
		}
		entry, ok := byRepo[fullName]
		if !ok {
			entry = &CompatibleRepo{
				Repo:        fullName,
				Stars:       item.Repository.Stars,
				Description: item.Repository.Description,
				URL:         item.Repository.HTMLURL,
			}
			byRepo[fullName] = entry
			patternsByRepo[fullName] = make(map[string]bool)
			order = append(order, fullName)
		}
		entry.Files = append(entry.Files, FileRef{Path: item.Path, URL: item.HTMLURL})

		content := f.fileContent(ctx, fullName, item.Path)
		lower := strings.ToLower(content)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				patternsByRepo[fullName][p] = true
			}
		}
	}

	var repos []CompatibleRepo
	for _, fullName := range order {
		entry := byRepo[fullName]
		foundSet := patternsByRepo[fullName]
		if float64(len(foundSet)) < float64(len(patterns))*compatibleThreshold {
			continue
		}
		for _, p := range patterns {
			if foundSet[p] {
				entry.PatternsFound = append(entry.PatternsFound, p)
			}
		}
		entry.CompatibilityScore = float64(len(foundSet)) / float64(len(patterns))
		repos = append(repos, *entry)
	}

	sort.SliceStable(repos, func(i, j int) bool {
		if repos[i].CompatibilityScore != repos[j].CompatibilityScore {
			return repos[i].CompatibilityScore > repos[j].CompatibilityScore
		}
		return repos[i].Stars > repos[j].Stars
	})

	result := &CompatibleResult{
		PatternsSearched: patterns,
		Language:         language,
		TotalFound:       len(repos),
		Repositories:     repos,
	}

	if f.cache != nil {
		if err := f.cache.SetJSON(storage.SearchCache, cacheKey, result, f.cacheTTL); err != nil {
			f.logger.Warn("Failed to cache compatible patterns", "key", cacheKey, "error", err)
		}
	}

	result.Repositories = capRepos(result.Repositories, maxResults)
	return result, nil
}

// fileContent fetches and redacts one file; failures degrade to empty
// content rather than aborting the whole search.
func (f *CompatibleFinder) fileContent(ctx context.Context, fullName, path string) string {
	owner, repo, ok := splitFullName(fullName)
	if !ok || path == "" {
		return ""
	}
	content, err := f.client.GetFileContent(ctx, owner, repo, path, "")
	if err != nil {
		f.logger.Warn("Failed to check patterns in file", "repo", fullName, "path", path, "error", err)
		return ""
	}
	text := string(content)
	if f.redactor != nil {
		text, _ = f.redactor.Redact(text)
	}
	return text
}

func capRepos(repos []CompatibleRepo, n int) []CompatibleRepo {
	if len(repos) > n {
		return repos[:n]
	}
	return repos
}
