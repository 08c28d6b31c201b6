package license

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"ghscout/internal/github"
	"ghscout/internal/storage"
)

// Fetcher is the slice of the GitHub client the checker needs.
type Fetcher interface {
	GetLicense(ctx context.Context, owner, repo string) (*github.RepoLicense, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Cache is the slice of the storage layer the checker needs.
type Cache interface {
	GetJSON(tier storage.CacheTier, key string, out interface{}) (bool, error)
	SetJSON(tier storage.CacheTier, key string, value interface{}, ttl time.Duration) error
}

// Verdict is the outcome of a license check.
type Verdict struct {
	Repo      string   `json:"repo"`
	License   string   `json:"license"`
	Safety    Category `json:"safety"`
	Source    string   `json:"source"` // "api", "file_detection", or "none"
	Details   string   `json:"details,omitempty"`
	FromCache bool     `json:"fromCache"`
}

// Text patterns for detecting licenses when the API has no verdict.
var licensePatterns = []struct {
	spdx    string
	pattern *regexp.Regexp
}{
	{"MIT", regexp.MustCompile(`(?is)MIT License|Permission is hereby granted, free of charge`)},
	{"APACHE-2.0", regexp.MustCompile(`(?is)Apache License.*Version 2\.0`)},
	{"GPL-3.0", regexp.MustCompile(`(?is)GNU GENERAL PUBLIC LICENSE.*Version 3`)},
	{"GPL-2.0", regexp.MustCompile(`(?is)GNU GENERAL PUBLIC LICENSE.*Version 2`)},
	{"BSD", regexp.MustCompile(`(?is)BSD.*Clause License|Redistribution and use in source and binary forms`)},
	{"ISC", regexp.MustCompile(`(?is)ISC License|Permission to use, copy, modify.*ISC`)},
}

// Candidate file names checked during file detection, in order.
var licenseFileNames = []string{"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING", "COPYING.txt"}

// Checker resolves and categorizes repository licenses.
type Checker struct {
	client   Fetcher
	cache    Cache
	policy   *Policy
	logger   *slog.Logger
	cacheTTL time.Duration
}

// NewChecker creates a checker. cache may be nil to disable caching;
// policy may be nil for the builtin policy.
func NewChecker(client Fetcher, cache Cache, policy *Policy, logger *slog.Logger, cacheTTL time.Duration) *Checker {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if cacheTTL <= 0 {
		cacheTTL = 7 * 24 * time.Hour
	}
	return &Checker{client: client, cache: cache, policy: policy, logger: logger, cacheTTL: cacheTTL}
}

// Check resolves the repository's license. The GitHub license API is
// authoritative; when it has no verdict the checker falls back to
// pattern-matching common LICENSE files. Unknown results are cached
// too, so unlicensed repositories do not trigger repeated lookups.
func (c *Checker) Check(ctx context.Context, owner, repo string) (*Verdict, error) {
	cacheKey := fmt.Sprintf("license_%s_%s", owner, repo)
	if c.cache != nil {
		var cached Verdict
		if ok, err := c.cache.GetJSON(storage.LicenseCache, cacheKey, &cached); err != nil {
			c.logger.Warn("License cache lookup failed", "key", cacheKey, "error", err)
		} else if ok {
			cached.FromCache = true
			return &cached, nil
		}
	}

	verdict := &Verdict{
		Repo:    owner + "/" + repo,
		License: "UNKNOWN",
		Safety:  ReviewRequired,
		Source:  "none",
	}

	lic, err := c.client.GetLicense(ctx, owner, repo)
	if err != nil {
		c.logger.Warn("License API lookup failed, trying file detection", "repo", verdict.Repo, "error", err)
	}
	if lic != nil && lic.License != nil {
		spdx := strings.ToLower(lic.License.SPDXID)
		if spdx != "" && spdx != "noassertion" {
			verdict.License = strings.ToUpper(spdx)
			verdict.Safety = c.policy.Categorize(spdx)
			verdict.Source = "api"
			verdict.Details = lic.License.Name
			c.logger.Info("License resolved", "repo", verdict.Repo, "license", verdict.License, "safety", verdict.Safety)
			c.store(cacheKey, verdict)
			return verdict, nil
		}
	}

	if detected := c.detectFromFile(ctx, owner, repo); detected != nil {
		verdict.License = detected.License
		verdict.Safety = detected.Safety
		verdict.Details = detected.Details
		verdict.Source = "file_detection"
		c.logger.Info("License detected from file", "repo", verdict.Repo, "license", verdict.License)
	}

	c.store(cacheKey, verdict)
	return verdict, nil
}

func (c *Checker) store(key string, v *Verdict) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetJSON(storage.LicenseCache, key, v, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to cache license verdict", "key", key, "error", err)
	}
}

func (c *Checker) detectFromFile(ctx context.Context, owner, repo string) *Verdict {
	for _, name := range licenseFileNames {
		content, err := c.client.GetFileContent(ctx, owner, repo, name, "")
		if err != nil {
			continue
		}
		text := string(content)
		for _, lp := range licensePatterns {
			if lp.pattern.MatchString(text) {
				return &Verdict{
					License: lp.spdx,
					Safety:  c.policy.Categorize(lp.spdx),
					Details: "Detected from " + name,
				}
			}
		}
		// A license file exists but matches nothing known.
		return &Verdict{
			License: "CUSTOM",
			Safety:  ReviewRequired,
			Details: "Custom license in " + name,
		}
	}
	return nil
}
