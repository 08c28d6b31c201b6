package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"ghscout/internal/slogutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	logger := slogutil.NewDiscardLogger()
	db, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache, err := NewCache(db, logger, CacheOptions{})
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	return cache
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)

	payload := []byte(`{"map":"Repository Map"}`)
	if err := c.Set(RepoMapCache, "octocat_hello@abc123", payload, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := c.Get(RepoMapCache, "octocat_hello@abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get = %q, want %q", got, payload)
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(SearchCache, "never-set")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected a miss")
	}
}

func TestTiersDoNotCollide(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(SearchCache, "k", []byte("search"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(LicenseCache, "k", []byte("license"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, _ := c.Get(LicenseCache, "k")
	if !ok || string(got) != "license" {
		t.Errorf("license tier returned %q", got)
	}
	got, ok, _ = c.Get(SearchCache, "k")
	if !ok || string(got) != "search" {
		t.Errorf("search tier returned %q", got)
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(SearchCache, "stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, ok, err := c.Get(SearchCache, "stale")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expired entry should be a miss")
	}
}

func TestSetReplacesExisting(t *testing.T) {
	c := newTestCache(t)

	c.Set(RepoMapCache, "k", []byte("v1"), time.Hour)
	c.Set(RepoMapCache, "k", []byte("v2"), time.Hour)

	got, ok, _ := c.Get(RepoMapCache, "k")
	if !ok || string(got) != "v2" {
		t.Errorf("Get = %q, want v2", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := newTestCache(t)

	type verdict struct {
		SPDX     string `json:"spdx"`
		Category string `json:"category"`
	}
	in := verdict{SPDX: "MIT", Category: "safe"}
	if err := c.SetJSON(LicenseCache, "octocat_hello", in, time.Hour); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out verdict
	ok, err := c.GetJSON(LicenseCache, "octocat_hello", &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if out != in {
		t.Errorf("GetJSON = %+v, want %+v", out, in)
	}
}

func TestPayloadIsCompressedAtRest(t *testing.T) {
	c := newTestCache(t)

	// Highly repetitive payload so compression is guaranteed to shrink it.
	payload := []byte(strings.Repeat("func main() { run() }\n", 500))
	if err := c.Set(RepoMapCache, "big", payload, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var stored []byte
	err := c.db.QueryRow("SELECT payload FROM tool_cache WHERE key = 'big'").Scan(&stored)
	if err != nil {
		t.Fatalf("raw lookup failed: %v", err)
	}
	if len(stored) >= len(payload) {
		t.Errorf("stored %d bytes, expected smaller than %d", len(stored), len(payload))
	}
}

func TestInvalidateTier(t *testing.T) {
	c := newTestCache(t)

	c.Set(SearchCache, "a", []byte("1"), time.Hour)
	c.Set(RepoMapCache, "b", []byte("2"), time.Hour)

	if err := c.Invalidate(SearchCache); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, ok, _ := c.Get(SearchCache, "a"); ok {
		t.Error("search tier should be empty")
	}
	if _, ok, _ := c.Get(RepoMapCache, "b"); !ok {
		t.Error("repomap tier should survive")
	}
}

func TestCleanupExpired(t *testing.T) {
	c := newTestCache(t)

	c.Set(SearchCache, "old", []byte("1"), -time.Minute)
	c.Set(SearchCache, "fresh", []byte("2"), time.Hour)

	removed, err := c.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(t)

	c.Set(SearchCache, "a", []byte("1"), time.Hour)
	c.Set(SearchCache, "b", []byte("2"), time.Hour)
	c.Set(LicenseCache, "c", []byte("3"), time.Hour)

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["search"]["entries"] != 2 {
		t.Errorf("search entries = %d, want 2", stats["search"]["entries"])
	}
	if stats["license"]["entries"] != 1 {
		t.Errorf("license entries = %d, want 1", stats["license"]["entries"])
	}
}

func TestSchemaVersion(t *testing.T) {
	logger := slogutil.NewDiscardLogger()
	db, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	logger := slogutil.NewDiscardLogger()

	db, err := Open(dir, logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	c, err := NewCache(db, logger, CacheOptions{})
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if err := c.Set(RepoMapCache, "persist", []byte("still here"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	db2, err := Open(dir, logger)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()
	c2, err := NewCache(db2, logger, CacheOptions{})
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	got, ok, err := c2.Get(RepoMapCache, "persist")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(got) != "still here" {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
}
