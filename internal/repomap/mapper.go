package repomap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ghscout/internal/github"
	"ghscout/internal/parser"
	"ghscout/internal/storage"
)

// Fetcher is the slice of the GitHub client the mapper needs.
type Fetcher interface {
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
	GetBranch(ctx context.Context, owner, repo, branch string) (*github.Branch, error)
	GetTree(ctx context.Context, owner, repo, ref string) ([]github.TreeEntry, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Cache is the slice of the storage layer the mapper needs.
type Cache interface {
	GetJSON(tier storage.CacheTier, key string, out interface{}) (bool, error)
	SetJSON(tier storage.CacheTier, key string, value interface{}, ttl time.Duration) error
}

// Result is an assembled repository map plus its provenance.
type Result struct {
	Repo             string `json:"repo"`
	CommitSHA        string `json:"commitSha"`
	FilesAnalyzed    int    `json:"filesAnalyzed"`
	TotalSymbols     int    `json:"totalSymbols"`
	DisplayedSymbols int    `json:"displayedSymbols"`
	Map              string `json:"map"`
	FromCache        bool   `json:"fromCache"`
}

const (
	// NoCodeFilesMessage is returned when a repo has nothing parseable.
	NoCodeFilesMessage = "No supported code files found in repository."
	// NoSymbolsMessage is returned when parsing yields no symbols.
	NoSymbolsMessage = "No symbols found in repository."
)

// Paths containing any of these fragments are skipped: generated code,
// vendored dependencies, and tests add noise without adding signal.
var skipFragments = []string{
	"node_modules/",
	"vendor/",
	".git/",
	"__pycache__/",
	"dist/",
	"build/",
	".egg-info/",
	"venv/",
	"env/",
	"test/",
	"tests/",
	"spec/",
	".test.",
	".spec.",
	".min.",
	".map",
	".bundle.",
}

// Mapper orchestrates fetching, parsing, ranking, and assembly of a
// repository map.
type Mapper struct {
	client     Fetcher
	cache      Cache
	registry   *parser.Registry
	ranker     *Ranker
	logger     *slog.Logger
	maxFiles   int
	maxSymbols int
	cacheTTL   time.Duration
}

// MapperOptions bound the work a single map build may do.
type MapperOptions struct {
	MaxFiles   int
	MaxSymbols int
	CacheTTL   time.Duration
}

// NewMapper creates a mapper. cache may be nil to disable caching.
func NewMapper(client Fetcher, cache Cache, logger *slog.Logger, opts MapperOptions) *Mapper {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 100
	}
	if opts.MaxSymbols <= 0 {
		opts.MaxSymbols = 50
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Mapper{
		client:     client,
		cache:      cache,
		registry:   parser.NewRegistry(),
		ranker:     NewRanker(logger),
		logger:     logger,
		maxFiles:   opts.MaxFiles,
		maxSymbols: opts.MaxSymbols,
		cacheTTL:   opts.CacheTTL,
	}
}

// BuildMap produces the ranked repository map for owner/repo at its
// default branch head. maxSymbols overrides the configured cap when
// positive.
func (m *Mapper) BuildMap(ctx context.Context, owner, repo string, maxSymbols int) (*Result, error) {
	if maxSymbols <= 0 {
		maxSymbols = m.maxSymbols
	}

	repoInfo, err := m.client.GetRepo(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	branch := repoInfo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	// The commit SHA pins the cache entry to a snapshot. When the
	// branch lookup fails the map is still built, just keyed at HEAD.
	sha := "HEAD"
	if br, err := m.client.GetBranch(ctx, owner, repo, branch); err == nil && br.Commit.SHA != "" {
		sha = br.Commit.SHA
	} else if err != nil {
		m.logger.Debug("Branch lookup failed, building map at HEAD", "repo", owner+"/"+repo, "branch", branch, "error", err)
	}

	cacheKey := fmt.Sprintf("%s_%s@%s", owner, repo, sha)
	if m.cache != nil {
		var cached Result
		if ok, err := m.cache.GetJSON(storage.RepoMapCache, cacheKey, &cached); err != nil {
			m.logger.Warn("Cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			cached.FromCache = true
			return &cached, nil
		}
	}

	tree, err := m.client.GetTree(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}

	files := filterCodeFiles(tree)
	if len(files) > m.maxFiles {
		m.logger.Warn("Repository exceeds file budget, analyzing a prefix",
			"repo", owner+"/"+repo, "files", len(files), "budget", m.maxFiles)
		files = files[:m.maxFiles]
	}
	if len(files) == 0 {
		return &Result{Repo: owner + "/" + repo, CommitSHA: sha, Map: NoCodeFilesMessage}, nil
	}

	var (
		symbols []RepoSymbol
		imports []string
		calls   []string
	)
	for _, f := range files {
		content, err := m.client.GetFileContent(ctx, owner, repo, f.Path, sha)
		if err != nil {
			m.logger.Debug("Skipping unfetchable file", "path", f.Path, "error", err)
			continue
		}
		p, ok, err := m.registry.ForPath(f.Path)
		if !ok || err != nil {
			if err != nil {
				m.logger.Debug("Skipping file without parser", "path", f.Path, "error", err)
			}
			continue
		}
		res, err := p.Parse(ctx, f.Path, content)
		if err != nil {
			m.logger.Debug("Skipping unparseable file", "path", f.Path, "error", err)
			continue
		}
		for _, s := range res.Symbols {
			symbols = append(symbols, RepoSymbol{Symbol: s, Path: f.Path})
		}
		imports = append(imports, res.Imports...)
		calls = append(calls, res.Calls...)
	}

	// FilesAnalyzed is the capped candidate count: files that fail to
	// fetch or parse still count toward it.
	if len(symbols) == 0 {
		return &Result{Repo: owner + "/" + repo, CommitSHA: sha, FilesAnalyzed: len(files), Map: NoSymbolsMessage}, nil
	}

	scores := m.ranker.Rank(symbols, imports, calls)
	top := SelectTop(symbols, scores, maxSymbols)

	result := &Result{
		Repo:             owner + "/" + repo,
		CommitSHA:        sha,
		FilesAnalyzed:    len(files),
		TotalSymbols:     len(symbols),
		DisplayedSymbols: len(top),
		Map:              FormatMap(top, scores),
	}

	if m.cache != nil {
		if err := m.cache.SetJSON(storage.RepoMapCache, cacheKey, result, m.cacheTTL); err != nil {
			m.logger.Warn("Failed to cache repository map", "key", cacheKey, "error", err)
		}
	}
	return result, nil
}

// filterCodeFiles keeps blobs with a supported extension that do not
// live under vendored, generated, or test paths.
func filterCodeFiles(tree []github.TreeEntry) []github.TreeEntry {
	var out []github.TreeEntry
	for _, e := range tree {
		if e.Type != "blob" {
			continue
		}
		if _, ok := parser.LanguageFromPath(e.Path); !ok {
			continue
		}
		if shouldSkipPath(e.Path) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func shouldSkipPath(path string) bool {
	lower := strings.ToLower(path)
	for _, frag := range skipFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
