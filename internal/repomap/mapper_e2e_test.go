//go:build cgo

package repomap

import (
	"context"
	"strings"
	"testing"

	"ghscout/internal/github"
)

const appSource = `import os
from util import helper

def main():
    helper()
    run_all()

class Engine:
    def run(self):
        pass
`

const utilSource = `def helper():
    pass

def run_all():
    helper()
`

func TestBuildMapEndToEnd(t *testing.T) {
	f := &fakeFetcher{
		repo:   stdRepo(),
		branch: stdBranch(),
		tree:   []github.TreeEntry{blob("app.py"), blob("util.py")},
		files: map[string][]byte{
			"app.py":  []byte(appSource),
			"util.py": []byte(utilSource),
		},
	}
	m := newTestMapper(f, nil)

	res, err := m.BuildMap(context.Background(), "octocat", "hello", 0)
	if err != nil {
		t.Fatalf("BuildMap failed: %v", err)
	}

	if res.Repo != "octocat/hello" {
		t.Errorf("Repo = %q", res.Repo)
	}
	if res.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %q", res.CommitSHA)
	}
	if res.FilesAnalyzed != 2 {
		t.Errorf("FilesAnalyzed = %d, want 2", res.FilesAnalyzed)
	}
	// main, Engine, Engine.run, helper, run_all
	if res.TotalSymbols != 5 {
		t.Errorf("TotalSymbols = %d, want 5", res.TotalSymbols)
	}
	if res.FromCache {
		t.Error("first build should not come from cache")
	}

	for _, want := range []string{"Repository Map", "app.py", "util.py", "def main"} {
		if !strings.Contains(res.Map, want) {
			t.Errorf("map missing %q:\n%s", want, res.Map)
		}
	}

	// main is an entry point and must outrank the helper it calls.
	mainIdx := strings.Index(res.Map, "def main")
	helperIdx := strings.Index(res.Map, "def helper")
	if mainIdx < 0 || helperIdx < 0 {
		t.Fatalf("map missing expected symbols:\n%s", res.Map)
	}
	if mainIdx > helperIdx {
		t.Errorf("main should rank above helper:\n%s", res.Map)
	}
}

func TestBuildMapSecondCallHitsCache(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{
		repo:   stdRepo(),
		branch: stdBranch(),
		tree:   []github.TreeEntry{blob("app.py")},
		files:  map[string][]byte{"app.py": []byte(appSource)},
	}
	m := newTestMapper(f, cache)

	first, err := m.BuildMap(context.Background(), "octocat", "hello", 0)
	if err != nil {
		t.Fatalf("first BuildMap failed: %v", err)
	}
	second, err := m.BuildMap(context.Background(), "octocat", "hello", 0)
	if err != nil {
		t.Fatalf("second BuildMap failed: %v", err)
	}

	if !second.FromCache {
		t.Error("second build should come from cache")
	}
	if second.Map != first.Map {
		t.Error("cached map should match the original")
	}
	if f.treeCalls != 1 {
		t.Errorf("tree fetched %d times, want 1", f.treeCalls)
	}
}

func TestBuildMapRespectsMaxSymbolsOverride(t *testing.T) {
	f := &fakeFetcher{
		repo:   stdRepo(),
		branch: stdBranch(),
		tree:   []github.TreeEntry{blob("app.py"), blob("util.py")},
		files: map[string][]byte{
			"app.py":  []byte(appSource),
			"util.py": []byte(utilSource),
		},
	}
	m := newTestMapper(f, nil)

	res, err := m.BuildMap(context.Background(), "octocat", "hello", 2)
	if err != nil {
		t.Fatalf("BuildMap failed: %v", err)
	}
	if res.DisplayedSymbols != 2 {
		t.Errorf("DisplayedSymbols = %d, want 2", res.DisplayedSymbols)
	}
	if res.TotalSymbols != 5 {
		t.Errorf("TotalSymbols = %d, want 5", res.TotalSymbols)
	}
}
