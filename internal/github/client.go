package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ghscout/internal/errors"
	"ghscout/internal/version"
)

const (
	defaultBaseURL   = "https://api.github.com"
	apiVersion       = "2022-11-28"
	maxResponseBytes = 10 * 1024 * 1024
)

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Client talks to the GitHub REST API with retry, rate limiting, and
// typed errors. A nil token gives unauthenticated access with GitHub's
// much smaller anonymous quota.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *Limiter
	logger     *slog.Logger
	retry      retryConfig
}

// NewClient creates a GitHub client. limiter may be nil to disable
// client-side budgeting.
func NewClient(token string, limiter *Limiter, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		logger:     logger,
		retry: retryConfig{
			maxRetries: 3,
			baseDelay:  500 * time.Millisecond,
			maxDelay:   5 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint, for GitHub Enterprise or tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// GetRepo fetches repository metadata.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	var r Repo
	path := fmt.Sprintf("/repos/%s/%s", owner, repo)
	if err := c.getJSON(ctx, path, TierCore, &r); err != nil {
		if errors.IsCode(err, errors.NotFound) || errors.IsCode(err, errors.RepoUnreachable) {
			return nil, errors.NewRepoUnreachable(owner, repo, err)
		}
		return nil, err
	}
	return &r, nil
}

// GetBranch fetches branch metadata, primarily for the commit SHA that
// pins cache entries.
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (*Branch, error) {
	var b Branch
	path := fmt.Sprintf("/repos/%s/%s/branches/%s", owner, repo, url.PathEscape(branch))
	if err := c.getJSON(ctx, path, TierCore, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetTree fetches the recursive file listing at ref. When ref is HEAD
// and the API rejects it, the lookup falls back to main once.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) ([]TreeEntry, error) {
	entries, err := c.getTreeAt(ctx, owner, repo, ref)
	if err != nil && ref == "HEAD" && errors.IsCode(err, errors.NotFound) {
		c.logger.Debug("Tree lookup at HEAD failed, retrying at main", "repo", owner+"/"+repo)
		return c.getTreeAt(ctx, owner, repo, "main")
	}
	return entries, err
}

func (c *Client) getTreeAt(ctx context.Context, owner, repo, ref string) ([]TreeEntry, error) {
	var tr treeResponse
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", owner, repo, url.PathEscape(ref))
	if err := c.getJSON(ctx, path, TierCore, &tr); err != nil {
		return nil, err
	}
	if tr.Truncated {
		c.logger.Warn("Tree listing truncated by API", "repo", owner+"/"+repo, "ref", ref, "entries", len(tr.Tree))
	}
	return tr.Tree, nil
}

// GetFileContent fetches one file's bytes via the contents API. Files
// above the inline size limit come back without content; those are
// fetched through their download URL instead.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var cr contentResponse
	p := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, escapePath(path))
	if ref != "" {
		p += "?ref=" + url.QueryEscape(ref)
	}
	if err := c.getJSON(ctx, p, TierCore, &cr); err != nil {
		return nil, err
	}
	if cr.Content != "" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
		if err != nil {
			return nil, errors.New(errors.InternalError, fmt.Sprintf("decode content of %s", path), err)
		}
		return decoded, nil
	}
	if cr.DownloadURL != "" {
		return c.download(ctx, cr.DownloadURL)
	}
	return nil, errors.NewNotFound(fmt.Sprintf("content of %s/%s/%s", owner, repo, path))
}

// SearchCode runs a code search query.
func (c *Client) SearchCode(ctx context.Context, query string, perPage int) (*SearchResults, error) {
	if perPage <= 0 {
		perPage = 10
	}
	var sr SearchResults
	path := fmt.Sprintf("/search/code?q=%s&per_page=%d", url.QueryEscape(query), perPage)
	if err := c.getJSON(ctx, path, TierSearch, &sr); err != nil {
		return nil, err
	}
	return &sr, nil
}

// GetLicense fetches the repository's detected license. Repositories
// with no detectable license return nil without error.
func (c *Client) GetLicense(ctx context.Context, owner, repo string) (*RepoLicense, error) {
	var rl RepoLicense
	path := fmt.Sprintf("/repos/%s/%s/license", owner, repo)
	if err := c.getJSON(ctx, path, TierCore, &rl); err != nil {
		if errors.IsCode(err, errors.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rl, nil
}

// ValidateToken checks the configured token against /user and returns
// the authenticated login.
func (c *Client) ValidateToken(ctx context.Context) (string, error) {
	var u User
	if err := c.getJSON(ctx, "/user", TierCore, &u); err != nil {
		return "", err
	}
	return u.Login, nil
}

func (c *Client) getJSON(ctx context.Context, path, tier string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Acquire(tier); err != nil {
			return err
		}
	}

	body, err := c.doWithRetry(ctx, c.baseURL+path, tier)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.New(errors.InternalError, fmt.Sprintf("decode response from %s", path), err)
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, fullURL, tier string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retry.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.baseDelay * time.Duration(1<<(attempt-1))
			if delay > c.retry.maxDelay {
				delay = c.retry.maxDelay
			}
			c.logger.Debug("Retrying request", "url", fullURL, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, errors.New(errors.RepoUnreachable, "request cancelled", ctx.Err())
			case <-time.After(delay):
			}
		}

		body, retryable, err := c.doOnce(ctx, fullURL, tier)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL, tier string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, errors.New(errors.InternalError, "build request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", "ghscout/"+version.Version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.New(errors.RepoUnreachable, "request failed", err)
	}
	defer resp.Body.Close()

	c.updateLimiter(tier, resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, errors.New(errors.RepoUnreachable, "read response body", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errors.NewNotFound(fullURL)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, errors.New(errors.AuthFailed, "GitHub rejected the token", nil)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if remaining := resp.Header.Get("x-ratelimit-remaining"); remaining == "0" {
			return nil, false, errors.NewRateLimited(tier, resetSeconds(resp))
		}
		return nil, false, errors.New(errors.AuthFailed, fmt.Sprintf("access forbidden (%d)", resp.StatusCode), nil)
	case resp.StatusCode >= 500:
		return nil, true, errors.New(errors.RepoUnreachable, fmt.Sprintf("server error %d", resp.StatusCode), nil)
	default:
		return nil, false, errors.New(errors.InternalError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncateBody(data)), nil)
	}
}

func (c *Client) updateLimiter(tier string, resp *http.Response) {
	if c.limiter == nil {
		return
	}
	remaining := resp.Header.Get("x-ratelimit-remaining")
	if remaining == "" {
		return
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil {
		return
	}
	reset, _ := strconv.ParseInt(resp.Header.Get("x-ratelimit-reset"), 10, 64)
	c.limiter.Update(tier, rem, reset)
}

func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.InternalError, "build download request", err)
	}
	req.Header.Set("User-Agent", "ghscout/"+version.Version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.RepoUnreachable, "download failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.RepoUnreachable, fmt.Sprintf("download returned %d", resp.StatusCode), nil)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

func resetSeconds(resp *http.Response) int {
	reset, err := strconv.ParseInt(resp.Header.Get("x-ratelimit-reset"), 10, 64)
	if err != nil || reset == 0 {
		return 60
	}
	secs := int(time.Until(time.Unix(reset, 0)).Seconds())
	if secs < 0 {
		secs = 0
	}
	return secs
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func truncateBody(data []byte) string {
	const limit = 200
	s := string(data)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
