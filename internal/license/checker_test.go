package license

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ghscout/internal/errors"
	"ghscout/internal/github"
	"ghscout/internal/slogutil"
	"ghscout/internal/storage"
)

type fakeFetcher struct {
	license    *github.RepoLicense
	licenseErr error
	files      map[string][]byte

	licenseCalls int
}

func (f *fakeFetcher) GetLicense(ctx context.Context, owner, repo string) (*github.RepoLicense, error) {
	f.licenseCalls++
	if f.licenseErr != nil {
		return nil, f.licenseErr
	}
	return f.license, nil
}

func (f *fakeFetcher) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if content, ok := f.files[path]; ok {
		return content, nil
	}
	return nil, errors.NewNotFound(path)
}

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (c *memCache) GetJSON(tier storage.CacheTier, key string, out interface{}) (bool, error) {
	data, ok := c.entries[string(tier)+"/"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, out)
}

func (c *memCache) SetJSON(tier storage.CacheTier, key string, value interface{}, ttl time.Duration) (err error) {
	c.entries[string(tier)+"/"+key], err = json.Marshal(value)
	return err
}

func apiLicense(spdx, name string) *github.RepoLicense {
	return &github.RepoLicense{License: &github.LicenseInfo{Key: spdx, SPDXID: spdx, Name: name}}
}

func newTestChecker(f *fakeFetcher, c Cache) *Checker {
	return NewChecker(f, c, nil, slogutil.NewDiscardLogger(), 0)
}

func TestCheckSafeLicenseFromAPI(t *testing.T) {
	f := &fakeFetcher{license: apiLicense("MIT", "MIT License")}
	checker := newTestChecker(f, nil)

	v, err := checker.Check(context.Background(), "octocat", "hello")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if v.License != "MIT" {
		t.Errorf("License = %q", v.License)
	}
	if v.Safety != SafeToUse {
		t.Errorf("Safety = %q, want SAFE_TO_USE", v.Safety)
	}
	if v.Source != "api" {
		t.Errorf("Source = %q", v.Source)
	}
}

func TestCheckViralLicense(t *testing.T) {
	f := &fakeFetcher{license: apiLicense("GPL-3.0", "GNU GPLv3")}
	checker := newTestChecker(f, nil)

	v, _ := checker.Check(context.Background(), "o", "r")
	if v.Safety != ViralWarning {
		t.Errorf("Safety = %q, want VIRAL_LICENSE_WARNING", v.Safety)
	}
}

func TestCheckUnrecognizedLicenseNeedsReview(t *testing.T) {
	f := &fakeFetcher{license: apiLicense("WTFPL", "Do What You Want")}
	checker := newTestChecker(f, nil)

	v, _ := checker.Check(context.Background(), "o", "r")
	if v.Safety != ReviewRequired {
		t.Errorf("Safety = %q, want REVIEW_REQUIRED", v.Safety)
	}
}

func TestCheckNoAssertionFallsBackToFile(t *testing.T) {
	f := &fakeFetcher{
		license: apiLicense("NOASSERTION", ""),
		files: map[string][]byte{
			"LICENSE": []byte("MIT License\n\nPermission is hereby granted, free of charge..."),
		},
	}
	checker := newTestChecker(f, nil)

	v, _ := checker.Check(context.Background(), "o", "r")
	if v.License != "MIT" {
		t.Errorf("License = %q, want MIT", v.License)
	}
	if v.Source != "file_detection" {
		t.Errorf("Source = %q, want file_detection", v.Source)
	}
}

func TestCheckCustomLicenseFile(t *testing.T) {
	f := &fakeFetcher{
		files: map[string][]byte{
			"COPYING": []byte("You may use this software on alternate Tuesdays only."),
		},
	}
	checker := newTestChecker(f, nil)

	v, _ := checker.Check(context.Background(), "o", "r")
	if v.License != "CUSTOM" {
		t.Errorf("License = %q, want CUSTOM", v.License)
	}
	if v.Safety != ReviewRequired {
		t.Errorf("Safety = %q", v.Safety)
	}
}

func TestCheckNoLicenseAnywhere(t *testing.T) {
	f := &fakeFetcher{}
	checker := newTestChecker(f, nil)

	v, err := checker.Check(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("missing license must not error: %v", err)
	}
	if v.License != "UNKNOWN" {
		t.Errorf("License = %q, want UNKNOWN", v.License)
	}
	if v.Source != "none" {
		t.Errorf("Source = %q, want none", v.Source)
	}
}

func TestCheckAPIErrorFallsBackToFile(t *testing.T) {
	f := &fakeFetcher{
		licenseErr: errors.New(errors.RepoUnreachable, "server error 502", nil),
		files: map[string][]byte{
			"LICENSE.txt": []byte("Apache License\nVersion 2.0, January 2004"),
		},
	}
	checker := newTestChecker(f, nil)

	v, err := checker.Check(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if v.License != "APACHE-2.0" {
		t.Errorf("License = %q, want APACHE-2.0", v.License)
	}
}

func TestCheckCachesVerdicts(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{license: apiLicense("MIT", "MIT License")}
	checker := newTestChecker(f, cache)

	first, _ := checker.Check(context.Background(), "o", "r")
	second, _ := checker.Check(context.Background(), "o", "r")

	if first.FromCache {
		t.Error("first check should miss the cache")
	}
	if !second.FromCache {
		t.Error("second check should hit the cache")
	}
	if f.licenseCalls != 1 {
		t.Errorf("API called %d times, want 1", f.licenseCalls)
	}
}

func TestCheckCachesUnknownVerdicts(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{}
	checker := newTestChecker(f, cache)

	checker.Check(context.Background(), "o", "r")
	v, _ := checker.Check(context.Background(), "o", "r")

	if !v.FromCache {
		t.Error("unknown verdicts should be cached too")
	}
	if f.licenseCalls != 1 {
		t.Errorf("API called %d times, want 1", f.licenseCalls)
	}
}

func TestPolicyOverrides(t *testing.T) {
	dir := t.TempDir()
	policyTOML := `[categories]
"wtfpl" = "SAFE_TO_USE"
"mit" = "REVIEW_REQUIRED"
`
	if err := os.WriteFile(filepath.Join(dir, "license-policy.toml"), []byte(policyTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadPolicy(dir)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if got := policy.Categorize("WTFPL"); got != SafeToUse {
		t.Errorf("override Categorize(WTFPL) = %q", got)
	}
	if got := policy.Categorize("MIT"); got != ReviewRequired {
		t.Errorf("override Categorize(MIT) = %q", got)
	}
	if got := policy.Categorize("gpl-3.0"); got != ViralWarning {
		t.Errorf("builtin Categorize(gpl-3.0) = %q", got)
	}
}

func TestLoadPolicyRejectsBadCategory(t *testing.T) {
	dir := t.TempDir()
	policyTOML := `[categories]
"mit" = "TOTALLY_FINE"
`
	if err := os.WriteFile(filepath.Join(dir, "license-policy.toml"), []byte(policyTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPolicy(dir); err == nil {
		t.Error("expected an error for an unknown category")
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	policy, err := LoadPolicy(t.TempDir())
	if err != nil {
		t.Fatalf("missing policy file should not error: %v", err)
	}
	if got := policy.Categorize("mit"); got != SafeToUse {
		t.Errorf("default Categorize(mit) = %q", got)
	}
}

func TestAdvice(t *testing.T) {
	for _, cat := range []Category{SafeToUse, ViralWarning, ReviewRequired} {
		if Advice(cat) == "" {
			t.Errorf("no advice for %q", cat)
		}
	}
}
