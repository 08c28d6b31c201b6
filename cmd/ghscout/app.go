package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ghscout/internal/config"
	"ghscout/internal/errors"
	"ghscout/internal/extract"
	"ghscout/internal/github"
	"ghscout/internal/license"
	"ghscout/internal/mcp"
	"ghscout/internal/repomap"
	"ghscout/internal/search"
	"ghscout/internal/secrets"
	"ghscout/internal/slogutil"
	"ghscout/internal/storage"

	"github.com/joho/godotenv"
)

// app wires configuration, storage, the GitHub client, and the domain
// services together. Every subcommand that talks to GitHub goes
// through here.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	db      *storage.DB
	cache   *storage.Cache
	client  *github.Client
	limiter *github.Limiter
	toolset mcp.Toolset
}

// newApp bootstraps the full service stack. requireToken rejects
// startup without GitHub credentials; offline commands pass false.
func newApp(requireToken bool) (*app, error) {
	// .env is optional, real environment still wins
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	if requireToken && cfg.GitHub.Token == "" {
		return nil, errors.New(errors.AuthFailed,
			"no GitHub token configured; set GITHUB_TOKEN or github.token in .ghscout/config.json", nil)
	}

	limiter := github.NewLimiter(
		cfg.RateLimit.GeneralPerHour,
		cfg.RateLimit.SearchPerMinute,
		cfg.RateLimit.StatePath,
		logger,
	)

	client := github.NewClient(cfg.GitHub.Token, limiter, logger)
	if cfg.GitHub.APIBaseURL != "" && cfg.GitHub.APIBaseURL != "https://api.github.com" {
		client.SetBaseURL(cfg.GitHub.APIBaseURL)
	}

	db, err := storage.Open(cfg.Cache.Dir, logger)
	if err != nil {
		return nil, err
	}
	cache, err := storage.NewCache(db, logger, storage.CacheOptions{
		MaxHotEntries: cfg.Cache.MemoryMaxEntries,
		HotEntryTTL:   time.Duration(cfg.Cache.MemoryEntryTtlSeconds) * time.Second,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	configDir := filepath.Join(cwd, ".ghscout")

	allowlist, err := secrets.LoadAllowlist(configDir)
	if err != nil {
		logger.Warn("Ignoring broken secrets allowlist", "error", err)
		allowlist = nil
	}
	redactor := secrets.NewRedactor(allowlist, logger)

	policy, err := license.LoadPolicy(configDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	searchTTL := time.Duration(cfg.Cache.SearchTtlSeconds) * time.Second
	searcher := search.NewSearcher(client, cache, redactor, logger, searchTTL)

	toolset := mcp.Toolset{
		Searcher:   searcher,
		Usage:      search.NewUsageFinder(searcher, cache, logger, searchTTL),
		Compatible: search.NewCompatibleFinder(client, cache, redactor, logger, searchTTL),
		Guide:      search.NewGuideGenerator(searcher, cache, logger, searchTTL),
		Simpler:    search.NewSimplerFinder(searcher, cache, logger, searchTTL),
		Validator:  search.NewValidator(redactor, logger),
		Mapper: repomap.NewMapper(client, cache, logger, repomap.MapperOptions{
			MaxFiles:   cfg.RepoMap.MaxFiles,
			MaxSymbols: cfg.RepoMap.MaxSymbols,
			CacheTTL:   time.Duration(cfg.Cache.RepoMapTtlSeconds) * time.Second,
		}),
		Extractor: extract.NewExtractor(client, redactor, logger),
		Licenses: license.NewChecker(client, cache, policy, logger,
			time.Duration(cfg.Cache.LicenseTtlSeconds)*time.Second),
		Limiter: limiter,
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		db:      db,
		cache:   cache,
		client:  client,
		limiter: limiter,
		toolset: toolset,
	}, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close cache database", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// newLogger builds the logger from config plus the --log-level flag.
// Logs always go to stderr (or a file) so stdout stays clean for the
// MCP protocol.
func newLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	level := parseLevel(cfg.Logging.Level)
	if logLevelFlag != "" {
		level = parseLevel(logLevelFlag)
	}

	if cfg.Logging.File != "" {
		return slogutil.NewFileLogger(cfg.Logging.File, level)
	}
	return slogutil.NewStderrLogger(level), nil, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
