// Package parser provides tree-sitter based source parsing for remote files.
// A parse produces the symbols a file defines plus the raw import statements
// and call expressions it contains.
package parser

// Symbol represents an extracted symbol from source code.
type Symbol struct {
	Name       string `json:"name"`      // Dotted for methods: "Class.method"
	Kind       string `json:"kind"`      // "function", "method", "class"
	Line       int    `json:"line"`      // Start line (1-indexed)
	EndLine    int    `json:"endLine"`   // End line (1-indexed)
	Container  string `json:"container"` // Parent class name for methods
	Signature  string `json:"signature"` // First line of the definition
	IsExported bool   `json:"isExported"`
}

// ParseResult is the output of parsing a single file.
type ParseResult struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	Symbols  []Symbol `json:"symbols"`
	Imports  []string `json:"imports"` // Raw import statement text
	Calls    []string `json:"calls"`   // Raw callee expressions, possibly dotted
}
