// Package search runs GitHub code searches and enriches the hits with
// redacted, truncated file contents.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ghscout/internal/github"
	"ghscout/internal/secrets"
	"ghscout/internal/storage"
)

const (
	maxResultLimit   = 30
	contentCharLimit = 2000
)

// Fetcher is the slice of the GitHub client the searcher needs.
type Fetcher interface {
	SearchCode(ctx context.Context, query string, perPage int) (*github.SearchResults, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Cache is the slice of the storage layer the searcher needs.
type Cache interface {
	GetJSON(tier storage.CacheTier, key string, out interface{}) (bool, error)
	SetJSON(tier storage.CacheTier, key string, value interface{}, ttl time.Duration) error
}

// Result is one search hit with its (redacted) content.
type Result struct {
	Repo    string  `json:"repo"`
	Path    string  `json:"path"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// Searcher performs cached code searches.
type Searcher struct {
	client   Fetcher
	cache    Cache
	redactor *secrets.Redactor
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewSearcher creates a searcher. cache and redactor may be nil.
func NewSearcher(client Fetcher, cache Cache, redactor *secrets.Redactor, logger *slog.Logger, cacheTTL time.Duration) *Searcher {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Searcher{client: client, cache: cache, redactor: redactor, logger: logger, cacheTTL: cacheTTL}
}

// Search runs a code search, optionally scoped to a language, and
// returns up to maxResults hits with content attached.
func (s *Searcher) Search(ctx context.Context, query, language string, maxResults int) ([]Result, error) {
	maxResults = clampResults(maxResults)

	langKey := language
	if langKey == "" {
		langKey = "all"
	}
	cacheKey := fmt.Sprintf("search_%s_%s_%d", query, langKey, maxResults)

	if s.cache != nil {
		var cached []Result
		if ok, err := s.cache.GetJSON(storage.SearchCache, cacheKey, &cached); err != nil {
			s.logger.Warn("Search cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	searchQuery := query
	if language != "" {
		searchQuery += " language:" + language
	}
	s.logger.Info("Searching GitHub", "query", searchQuery, "maxResults", maxResults)

	found, err := s.client.SearchCode(ctx, searchQuery, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(found.Items))
	for _, item := range found.Items {
		results = append(results, s.processItem(ctx, item))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(storage.SearchCache, cacheKey, results, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache search results", "key", cacheKey, "error", err)
		}
	}

	s.logger.Info("Search complete", "query", query, "results", len(results))
	return results, nil
}

func (s *Searcher) processItem(ctx context.Context, item github.SearchResult) Result {
	result := Result{
		Repo:  item.Repository.FullName,
		Path:  item.Path,
		URL:   item.HTMLURL,
		Score: item.Score,
	}

	owner, repo, ok := splitFullName(item.Repository.FullName)
	if !ok {
		result.Content = "[Content unavailable]"
		return result
	}

	content, err := s.client.GetFileContent(ctx, owner, repo, item.Path, "")
	if err != nil {
		s.logger.Warn("Failed to fetch search hit content", "repo", result.Repo, "path", item.Path, "error", err)
		result.Content = "[Content unavailable]"
		return result
	}

	text := string(content)
	if s.redactor != nil {
		text, _ = s.redactor.Redact(text)
	}
	if len(text) > contentCharLimit {
		text = text[:contentCharLimit] + "\n... (truncated)"
	}
	result.Content = text
	return result
}

func clampResults(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxResultLimit {
		return maxResultLimit
	}
	return n
}

func splitFullName(fullName string) (owner, repo string, ok bool) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
