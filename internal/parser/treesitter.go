//go:build cgo

package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps a tree-sitter parser for one language. A Parser is safe for
// concurrent use; tree-sitter itself is not, so Parse serializes.
type Parser struct {
	mu     sync.Mutex
	lang   Language
	parser *sitter.Parser
}

// NewParser creates a parser for the given language.
func NewParser(lang Language) (*Parser, error) {
	tsLang, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(tsLang)
	return &Parser{lang: lang, parser: p}, nil
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Parse parses source bytes into symbols, imports, and calls.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*ParseResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	root := tree.RootNode()

	result := &ParseResult{
		Path:     path,
		Language: p.lang,
		Symbols:  []Symbol{},
		Imports:  []string{},
		Calls:    []string{},
	}

	classNodes := findNodes(root, classNodeTypes(p.lang))
	for _, cls := range classNodes {
		sym := p.extractClass(cls, source)
		if sym == nil {
			continue
		}
		result.Symbols = append(result.Symbols, *sym)
		for _, m := range findNodes(cls, functionNodeTypes(p.lang)) {
			if method := p.extractFunction(m, source, sym.Name); method != nil {
				result.Symbols = append(result.Symbols, *method)
			}
		}
	}

	// Top-level functions: anything not inside a class body
	for _, fn := range findNodes(root, functionNodeTypes(p.lang)) {
		if insideAny(fn, classNodes) {
			continue
		}
		if sym := p.extractFunction(fn, source, ""); sym != nil {
			result.Symbols = append(result.Symbols, *sym)
		}
	}

	for _, imp := range findNodes(root, importNodeTypes(p.lang)) {
		result.Imports = append(result.Imports, nodeText(imp, source))
	}

	// Calls are deduplicated per file; repeated invocations of the same
	// callee contribute one entry.
	seenCalls := make(map[string]bool)
	for _, call := range findNodes(root, callNodeTypes(p.lang)) {
		callee := call.ChildByFieldName("function")
		if callee == nil {
			continue
		}
		text := nodeText(callee, source)
		if seenCalls[text] {
			continue
		}
		seenCalls[text] = true
		result.Calls = append(result.Calls, text)
	}

	return result, nil
}

func (p *Parser) extractFunction(node *sitter.Node, source []byte, container string) *Symbol {
	name := identifierText(node.ChildByFieldName("name"), source)
	if name == "" {
		return nil
	}

	kind := "function"
	if container != "" || node.Type() == "method_definition" || node.Type() == "method_declaration" {
		kind = "method"
	}
	if p.lang == LangGo && node.Type() == "method_declaration" && container == "" {
		container = goReceiverType(node, source)
	}

	full := name
	if container != "" {
		full = container + "." + name
	}

	return &Symbol{
		Name:       full,
		Kind:       kind,
		Line:       int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Container:  container,
		Signature:  extractSignature(node, source),
		IsExported: p.isExported(node, name),
	}
}

func (p *Parser) extractClass(node *sitter.Node, source []byte) *Symbol {
	var name string
	if p.lang == LangGo {
		// type_declaration wraps type_spec which carries the name
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "type_spec" {
				name = identifierText(child.ChildByFieldName("name"), source)
				break
			}
		}
	} else {
		name = identifierText(node.ChildByFieldName("name"), source)
	}
	if name == "" {
		return nil
	}

	return &Symbol{
		Name:       name,
		Kind:       "class",
		Line:       int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Signature:  extractSignature(node, source),
		IsExported: p.isExported(node, name),
	}
}

func (p *Parser) isExported(node *sitter.Node, name string) bool {
	switch p.lang {
	case LangPython:
		// Dunder names count as public
		if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
			return true
		}
		return !strings.HasPrefix(name, "_")
	case LangGo:
		for _, r := range name {
			return unicode.IsUpper(r)
		}
		return false
	default:
		// JS family: exported when wrapped in an export statement
		for anc := node.Parent(); anc != nil; anc = anc.Parent() {
			if anc.Type() == "export_statement" {
				return true
			}
		}
		return !strings.HasPrefix(name, "_")
	}
}

// goReceiverType pulls the receiver type name out of a method declaration.
func goReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var typeName string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || typeName != "" {
			return
		}
		if n.Type() == "type_identifier" {
			typeName = nodeText(n, source)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(recv)
	return typeName
}

func functionNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"function_definition"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"function_declaration", "generator_function_declaration", "method_definition"}
	case LangGo:
		return []string{"function_declaration", "method_declaration"}
	default:
		return nil
	}
}

func classNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"class_definition"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"class_declaration"}
	case LangGo:
		return []string{"type_declaration"}
	default:
		return nil
	}
}

func importNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"import_statement", "import_from_statement"}
	case LangJavaScript, LangTypeScript, LangTSX:
		return []string{"import_statement"}
	case LangGo:
		return []string{"import_declaration"}
	default:
		return nil
	}
}

func callNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"call"}
	default:
		return []string{"call_expression"}
	}
}

// extractSignature returns the first line of a definition, up to a body.
func extractSignature(node *sitter.Node, source []byte) string {
	text := source[node.StartByte():node.EndByte()]
	for i, b := range text {
		if b == '\n' || b == '{' {
			return strings.TrimSuffix(strings.TrimSpace(string(text[:i])), ":")
		}
	}
	if len(text) < 200 {
		return strings.TrimSuffix(strings.TrimSpace(string(text)), ":")
	}
	return strings.TrimSpace(string(text[:200])) + "..."
}

func identifierText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return nodeText(node, source)
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// insideAny reports whether node falls within any of the given containers.
func insideAny(node *sitter.Node, containers []*sitter.Node) bool {
	for _, c := range containers {
		if node.StartByte() >= c.StartByte() && node.EndByte() <= c.EndByte() && node != c {
			return true
		}
	}
	return false
}

// findNodes finds all nodes of the given types in the AST.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	if len(types) == 0 {
		return nil
	}

	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		for _, t := range types {
			if node.Type() == t {
				result = append(result, node)
				break
			}
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}

	walk(root)
	return result
}

// IsAvailable returns whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}
