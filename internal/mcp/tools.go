package mcp

import (
	"context"

	"ghscout/internal/envelope"
)

// Tool is one tool exposed via MCP.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler executes a tool call and returns an envelope response.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*envelope.Response, error)

func (s *Server) registerTools() {
	s.tools["search_patterns"] = s.handleSearchPatterns
	s.tools["get_repo_map"] = s.handleGetRepoMap
	s.tools["extract_function"] = s.handleExtractFunction
	s.tools["check_license"] = s.handleCheckLicense
	s.tools["find_compatible_patterns"] = s.handleFindCompatiblePatterns
	s.tools["get_implementation_guide"] = s.handleGetImplementationGuide
	s.tools["find_simpler_alternative"] = s.handleFindSimplerAlternative
	s.tools["find_usage_examples"] = s.handleFindUsageExamples
	s.tools["validate_code_snippet"] = s.handleValidateCodeSnippet
}

// GetToolDefinitions returns all tool definitions.
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "search_patterns",
			Description: "Search for code patterns on GitHub. Returns matching code snippets with secrets redacted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Search query (e.g., 'fastapi route decorator')",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language filter (optional, e.g., 'python', 'javascript')",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results (1-30, default: 10)",
						"minimum":     1,
						"maximum":     30,
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "get_repo_map",
			Description: "Generate a repository map showing the most important symbols (functions, classes) ranked by PageRank. Useful for understanding repository structure.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"owner": map[string]interface{}{
						"type":        "string",
						"description": "Repository owner (GitHub username or organization)",
					},
					"repo": map[string]interface{}{
						"type":        "string",
						"description": "Repository name",
					},
					"max_symbols": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of symbols to include (default: 50)",
						"minimum":     1,
					},
				},
				"required": []string{"owner", "repo"},
			},
		},
		{
			Name:        "extract_function",
			Description: "Extract a specific function from a GitHub file with precise tree-sitter parsing. Returns the function code with context lines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_url": map[string]interface{}{
						"type":        "string",
						"description": "GitHub file URL (e.g., 'https://github.com/owner/repo/blob/main/path/to/file.py')",
					},
					"function_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the function to extract",
					},
				},
				"required": []string{"file_url", "function_name"},
			},
		},
		{
			Name:        "check_license",
			Description: "Check repository license and categorize as SAFE_TO_USE, VIRAL_LICENSE_WARNING, or REVIEW_REQUIRED.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"owner": map[string]interface{}{
						"type":        "string",
						"description": "Repository owner",
					},
					"repo": map[string]interface{}{
						"type":        "string",
						"description": "Repository name",
					},
				},
				"required": []string{"owner", "repo"},
			},
		},
		{
			Name:        "find_compatible_patterns",
			Description: "Find code patterns that work together in the same codebase. Perfect for building features that need multiple integrations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"patterns": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "List of patterns to find together (e.g., ['auth', 'database', 'redis'])",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language filter (optional)",
					},
					"min_stars": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum repository stars (default: 10)",
						"minimum":     0,
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum results (default: 5)",
						"minimum":     1,
						"maximum":     10,
					},
				},
				"required": []string{"patterns"},
			},
		},
		{
			Name:        "get_implementation_guide",
			Description: "Generate step-by-step implementation guide based on working code from GitHub. Shows HOW to implement a feature with real examples.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"feature": map[string]interface{}{
						"type":        "string",
						"description": "Feature to implement (e.g., 'user authentication', 'file upload')",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language (optional)",
					},
					"framework": map[string]interface{}{
						"type":        "string",
						"description": "Framework name (optional, e.g., 'fastapi', 'express')",
					},
					"max_examples": map[string]interface{}{
						"type":        "integer",
						"description": "Number of examples to include (default: 3)",
						"minimum":     1,
						"maximum":     10,
					},
				},
				"required": []string{"feature"},
			},
		},
		{
			Name:        "find_simpler_alternative",
			Description: "Find simpler implementations of the same feature. Helps avoid overengineering by showing minimal working examples.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"feature": map[string]interface{}{
						"type":        "string",
						"description": "Feature to find simpler version of",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language (optional)",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum results (default: 5)",
						"minimum":     1,
						"maximum":     10,
					},
				},
				"required": []string{"feature"},
			},
		},
		{
			Name:        "find_usage_examples",
			Description: "Find real-world usage examples of functions, APIs, or libraries. Shows how code is actually used, not just what it is.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"function_or_library": map[string]interface{}{
						"type":        "string",
						"description": "Function name or library to find usage of",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language (optional)",
					},
					"context": map[string]interface{}{
						"type":        "string",
						"description": "Additional context (optional, e.g., 'authentication', 'database')",
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum results (default: 5)",
						"minimum":     1,
						"maximum":     10,
					},
				},
				"required": []string{"function_or_library"},
			},
		},
		{
			Name:        "validate_code_snippet",
			Description: "Validate code snippets before using them. Checks for security issues, deprecated APIs, and code quality.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"code": map[string]interface{}{
						"type":        "string",
						"description": "Code snippet to validate",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Programming language (optional)",
					},
					"check_secrets": map[string]interface{}{
						"type":        "boolean",
						"description": "Check for exposed secrets (default: true)",
					},
				},
				"required": []string{"code"},
			},
		},
	}
}

// stringArg extracts a string argument, empty if absent.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// stringsArg extracts a string-array argument, nil if absent. Non-string
// elements are dropped.
func stringsArg(args map[string]interface{}, key string) []string {
	items, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// intArg extracts an integer argument. JSON numbers decode as float64.
func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// boolArg extracts a boolean argument.
func boolArg(args map[string]interface{}, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}
