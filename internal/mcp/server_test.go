package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ghscout/internal/extract"
	"ghscout/internal/github"
	"ghscout/internal/license"
	"ghscout/internal/repomap"
	"ghscout/internal/search"
	"ghscout/internal/secrets"
	"ghscout/internal/slogutil"
)

// fakeGitHub satisfies the fetcher interfaces of every domain service.
type fakeGitHub struct {
	repo    *github.Repo
	branch  *github.Branch
	tree    []github.TreeEntry
	files   map[string][]byte
	license *github.RepoLicense
	results map[string]*github.SearchResults
}

func (f *fakeGitHub) GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error) {
	return f.repo, nil
}

func (f *fakeGitHub) GetBranch(ctx context.Context, owner, repo, branch string) (*github.Branch, error) {
	return f.branch, nil
}

func (f *fakeGitHub) GetTree(ctx context.Context, owner, repo, ref string) ([]github.TreeEntry, error) {
	return f.tree, nil
}

func (f *fakeGitHub) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if data, ok := f.files[path]; ok {
		return data, nil
	}
	return nil, context.DeadlineExceeded
}

func (f *fakeGitHub) GetLicense(ctx context.Context, owner, repo string) (*github.RepoLicense, error) {
	return f.license, nil
}

func (f *fakeGitHub) SearchCode(ctx context.Context, query string, perPage int) (*github.SearchResults, error) {
	if res, ok := f.results[query]; ok {
		return res, nil
	}
	return &github.SearchResults{}, nil
}

func newTestServer(t *testing.T, gh *fakeGitHub) *Server {
	t.Helper()
	logger := slogutil.NewDiscardLogger()
	redactor := secrets.NewRedactor(nil, logger)
	searcher := search.NewSearcher(gh, nil, redactor, logger, time.Hour)
	limiter := github.NewLimiter(5000, 30, filepath.Join(t.TempDir(), "ratelimit.json"), logger)

	toolset := Toolset{
		Searcher:   searcher,
		Usage:      search.NewUsageFinder(searcher, nil, logger, time.Hour),
		Compatible: search.NewCompatibleFinder(gh, nil, redactor, logger, time.Hour),
		Guide:      search.NewGuideGenerator(searcher, nil, logger, time.Hour),
		Simpler:    search.NewSimplerFinder(searcher, nil, logger, time.Hour),
		Validator:  search.NewValidator(redactor, logger),
		Mapper:     repomap.NewMapper(gh, nil, logger, repomap.MapperOptions{}),
		Extractor:  extract.NewExtractor(gh, redactor, logger),
		Licenses:   license.NewChecker(gh, nil, nil, logger, time.Hour),
		Limiter:    limiter,
	}
	return NewServer("test", toolset, logger)
}

// run feeds newline-delimited requests to the server and returns the
// decoded responses it wrote.
func run(t *testing.T, s *Server, requests ...string) []Message {
	t.Helper()
	var out bytes.Buffer
	s.SetStdin(strings.NewReader(strings.Join(requests, "\n") + "\n"))
	s.SetStdout(&out)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var msgs []Message
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// envelopeFromResult unwraps the envelope JSON embedded in a tools/call result.
func envelopeFromResult(t *testing.T, msg Message) map[string]interface{} {
	t.Helper()
	result, ok := msg.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result is not an object: %+v", msg)
	}
	content, ok := result["content"].([]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("missing content: %+v", result)
	}
	item := content[0].(map[string]interface{})
	var env map[string]interface{}
	if err := json.Unmarshal([]byte(item["text"].(string)), &env); err != nil {
		t.Fatalf("content is not envelope JSON: %v", err)
	}
	return env
}

func TestInitializeHandshake(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"test"}}}`)

	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
	result := msgs[0].Result.(map[string]interface{})
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "ghscout" || info["version"] != "test" {
		t.Errorf("serverInfo = %v", info)
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	result := msgs[0].Result.(map[string]interface{})
	tools := result["tools"].([]interface{})
	if len(tools) != 9 {
		t.Fatalf("expected 9 tools, got %d", len(tools))
	}

	names := map[string]bool{}
	for _, tl := range tools {
		names[tl.(map[string]interface{})["name"].(string)] = true
	}
	for _, want := range []string{
		"search_patterns", "get_repo_map", "extract_function", "check_license",
		"find_compatible_patterns", "get_implementation_guide", "find_simpler_alternative",
		"find_usage_examples", "validate_code_snippet",
	} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":3,"method":"bogus/method"}`)

	if msgs[0].Error == nil || msgs[0].Error.Code != MethodNotFound {
		t.Errorf("error = %+v", msgs[0].Error)
	}
}

func TestUnknownTool(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)

	if msgs[0].Error == nil || msgs[0].Error.Code != MethodNotFound {
		t.Errorf("error = %+v", msgs[0].Error)
	}
}

func TestCheckLicenseTool(t *testing.T) {
	gh := &fakeGitHub{
		license: &github.RepoLicense{License: &github.LicenseInfo{SPDXID: "MIT", Name: "MIT License"}},
	}
	s := newTestServer(t, gh)
	msgs := run(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"check_license","arguments":{"owner":"octo","repo":"hello"}}}`)

	env := envelopeFromResult(t, msgs[0])
	data := env["data"].(map[string]interface{})
	report := data["report"].(string)
	for _, want := range []string{"Repository: octo/hello", "License: MIT", "Safety: SAFE_TO_USE", "permissive license"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	meta := env["meta"].(map[string]interface{})
	if meta["rateLimit"] == nil || meta["traceId"] == nil {
		t.Errorf("meta = %v", meta)
	}
}

func TestValidateSnippetTool(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"validate_code_snippet","arguments":{"code":"var x = 1;","language":"javascript"}}}`)

	env := envelopeFromResult(t, msgs[0])
	report := env["data"].(map[string]interface{})["report"].(string)
	if !strings.Contains(report, "# Code Validation Results") {
		t.Errorf("report header missing:\n%s", report)
	}
	if !strings.Contains(report, "'var' instead of 'let' or 'const'") {
		t.Errorf("var issue missing:\n%s", report)
	}
}

func TestToolErrorStaysInEnvelope(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_repo_map","arguments":{}}}`)

	if msgs[0].Error != nil {
		t.Fatalf("tool failure escaped as protocol error: %+v", msgs[0].Error)
	}
	env := envelopeFromResult(t, msgs[0])
	errMsg, ok := env["error"].(string)
	if !ok || !strings.Contains(errMsg, "owner/repo") {
		t.Errorf("envelope error = %v", env["error"])
	}
}

func TestNotificationProducesNoResponse(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":8,"method":"ping"}`,
	)
	if len(msgs) != 1 {
		t.Fatalf("expected only the ping response, got %d messages", len(msgs))
	}
	if msgs[0].Id == nil {
		t.Error("ping response lost its id")
	}
}

func TestMalformedLineIsSkipped(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s,
		`this is not json`,
		`{"jsonrpc":"2.0","id":9,"method":"ping"}`,
	)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
}

func TestSearchPatternsTool(t *testing.T) {
	gh := &fakeGitHub{
		results: map[string]*github.SearchResults{
			"retry language:python": {TotalCount: 1, Items: []github.SearchResult{searchHit("octo/lib", "retry.py")}},
		},
		files: map[string][]byte{"retry.py": []byte("def retry(): pass\n")},
	}
	s := newTestServer(t, gh)
	msgs := run(t, s, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"search_patterns","arguments":{"query":"retry","language":"python"}}}`)

	env := envelopeFromResult(t, msgs[0])
	report := env["data"].(map[string]interface{})["report"].(string)
	for _, want := range []string{"Found 1 results for: retry", "Result 1: octo/lib", "File: retry.py", "def retry()"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestGetImplementationGuideTool(t *testing.T) {
	gh := &fakeGitHub{
		results: map[string]*github.SearchResults{
			"file upload fastapi language:python": {TotalCount: 1, Items: []github.SearchResult{searchHit("octo/web", "upload.py")}},
		},
		files: map[string][]byte{"upload.py": []byte("import shutil\ndef upload(): pass\n")},
	}
	s := newTestServer(t, gh)
	msgs := run(t, s, `{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"get_implementation_guide","arguments":{"feature":"file upload","language":"python","framework":"fastapi"}}}`)

	env := envelopeFromResult(t, msgs[0])
	report := env["data"].(map[string]interface{})["report"].(string)
	for _, want := range []string{
		"# Implementation Guide: file upload",
		"## Implementation Steps",
		"### Step 1: Install Dependencies",
		"import shutil",
		"### Example 1: octo/web",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFindSimplerAlternativeTool(t *testing.T) {
	gh := &fakeGitHub{
		results: map[string]*github.SearchResults{
			"retry simple": {TotalCount: 1, Items: []github.SearchResult{searchHit("octo/min", "examples/retry.py")}},
		},
		files: map[string][]byte{"examples/retry.py": []byte("# a simple retry\ndef retry(): pass\n")},
	}
	s := newTestServer(t, gh)
	msgs := run(t, s, `{"jsonrpc":"2.0","id":12,"method":"tools/call","params":{"name":"find_simpler_alternative","arguments":{"feature":"retry"}}}`)

	env := envelopeFromResult(t, msgs[0])
	report := env["data"].(map[string]interface{})["report"].(string)
	for _, want := range []string{
		"# Simpler Alternatives for: retry",
		"## Alternative 1: octo/min",
		"Simplicity Score:",
		"From examples/tutorials",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestFindCompatiblePatternsRequiresTwo(t *testing.T) {
	s := newTestServer(t, &fakeGitHub{})
	msgs := run(t, s, `{"jsonrpc":"2.0","id":13,"method":"tools/call","params":{"name":"find_compatible_patterns","arguments":{"patterns":["auth"]}}}`)

	if msgs[0].Error != nil {
		t.Fatalf("tool failure escaped as protocol error: %+v", msgs[0].Error)
	}
	env := envelopeFromResult(t, msgs[0])
	errMsg, ok := env["error"].(string)
	if !ok || !strings.Contains(errMsg, "at least 2 patterns") {
		t.Errorf("envelope error = %v", env["error"])
	}
}

func searchHit(repo, path string) github.SearchResult {
	r := github.SearchResult{Path: path, Score: 1}
	r.Repository.FullName = repo
	r.HTMLURL = "https://github.com/" + repo + "/blob/main/" + path
	return r
}
