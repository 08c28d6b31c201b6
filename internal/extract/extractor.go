package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ghscout/internal/errors"
	"ghscout/internal/parser"
	"ghscout/internal/secrets"
)

const contextLines = 3

// Fetcher is the slice of the GitHub client the extractor needs.
type Fetcher interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Result is an extracted function with its provenance.
type Result struct {
	Code         string `json:"code"`
	StartLine    int    `json:"startLine"`
	EndLine      int    `json:"endLine"`
	Signature    string `json:"signature"`
	Kind         string `json:"kind"`
	ContextLines int    `json:"contextLines"`
	Warning      string `json:"warning,omitempty"`
}

// Extractor locates a named function in a remote file. Tree-sitter
// gives precise boundaries when a grammar is available; otherwise an
// indentation heuristic over regex-located definitions takes over.
type Extractor struct {
	client   Fetcher
	registry *parser.Registry
	redactor *secrets.Redactor
	logger   *slog.Logger
}

// NewExtractor creates an extractor. redactor may be nil to skip
// secret redaction.
func NewExtractor(client Fetcher, redactor *secrets.Redactor, logger *slog.Logger) *Extractor {
	return &Extractor{
		client:   client,
		registry: parser.NewRegistry(),
		redactor: redactor,
		logger:   logger,
	}
}

// Extract fetches the file behind fileURL and returns functionName's
// definition with three lines of context on both sides.
func (e *Extractor) Extract(ctx context.Context, fileURL, functionName string) (*Result, error) {
	owner, repo, path, ok := ParseFileURL(fileURL)
	if !ok {
		return nil, errors.NewInvalidParameter("file_url", fmt.Sprintf("not a recognizable GitHub file URL: %s", fileURL))
	}

	e.logger.Info("Extracting function", "function", functionName, "file", owner+"/"+repo+"/"+path)

	content, err := e.client.GetFileContent(ctx, owner, repo, path, "")
	if err != nil {
		return nil, err
	}
	source := string(content)

	var result *Result
	if p, parserOK, perr := e.registry.ForPath(path); parserOK && perr == nil && parser.IsAvailable() {
		result = e.extractWithParser(ctx, source, functionName, p, path)
	}
	if result == nil {
		e.logger.Debug("Falling back to regex extraction", "path", path)
		result = extractWithRegex(source, functionName)
	}
	if result == nil {
		return nil, errors.NewNotFound(fmt.Sprintf("function %q in %s", functionName, path))
	}

	if e.redactor != nil {
		redacted, count := e.redactor.Redact(result.Code)
		result.Code = redacted
		if count > 0 {
			result.Warning = fmt.Sprintf("Redacted %d potential secret(s)", count)
		}
	}
	return result, nil
}

func (e *Extractor) extractWithParser(ctx context.Context, source, functionName string, p *parser.Parser, path string) *Result {
	parseResult, err := p.Parse(ctx, path, []byte(source))
	if err != nil {
		e.logger.Debug("Parser extraction failed", "path", path, "error", err)
		return nil
	}

	var target *parser.Symbol
	for i := range parseResult.Symbols {
		s := &parseResult.Symbols[i]
		if s.Name == functionName || strings.HasSuffix(s.Name, "."+functionName) {
			target = s
			break
		}
	}
	if target == nil {
		return nil
	}

	lines := strings.Split(source, "\n")
	start := target.Line - 1 - contextLines
	if start < 0 {
		start = 0
	}
	end := target.EndLine + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	return &Result{
		Code:         numberLines(lines, start, end),
		StartLine:    target.Line,
		EndLine:      target.EndLine,
		Signature:    target.Signature,
		Kind:         target.Kind,
		ContextLines: contextLines,
	}
}

// extractWithRegex locates a definition line by pattern and walks
// forward until indentation returns to the definition's level.
func extractWithRegex(source, functionName string) *Result {
	lines := strings.Split(source, "\n")
	quoted := regexp.QuoteMeta(functionName)

	patterns := []*regexp.Regexp{
		regexp.MustCompile(`^\s*(def|function|func|fn)\s+` + quoted + `\s*[\(\[]`),
		regexp.MustCompile(`^\s*(public|private|protected)?\s*\w*\s*` + quoted + `\s*[\(\[]`),
		regexp.MustCompile(`^\s*const\s+` + quoted + `\s*=`),
		regexp.MustCompile(`^\s*let\s+` + quoted + `\s*=`),
	}

	startLine := -1
	for i, line := range lines {
		for _, re := range patterns {
			if re.MatchString(line) {
				startLine = i
				break
			}
		}
		if startLine >= 0 {
			break
		}
	}
	if startLine < 0 {
		return nil
	}

	indent := indentOf(lines[startLine])
	endLine := startLine + 1
	for i := startLine + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) != "" {
			trimmed := strings.TrimSpace(line)
			if indentOf(line) <= indent && !strings.HasPrefix(trimmed, ")") &&
				!strings.HasPrefix(trimmed, "]") && !strings.HasPrefix(trimmed, "}") {
				endLine = i
				break
			}
		}
		endLine = i + 1
	}

	start := startLine - contextLines
	if start < 0 {
		start = 0
	}
	end := endLine + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	return &Result{
		Code:         numberLines(lines, start, end),
		StartLine:    startLine + 1,
		EndLine:      endLine,
		Signature:    strings.TrimSpace(lines[startLine]),
		Kind:         "function",
		ContextLines: contextLines,
	}
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func numberLines(lines []string, start, end int) string {
	numbered := make([]string, 0, end-start)
	for i := start; i < end && i < len(lines); i++ {
		numbered = append(numbered, fmt.Sprintf("%4d | %s", i+1, lines[i]))
	}
	return strings.Join(numbered, "\n")
}
