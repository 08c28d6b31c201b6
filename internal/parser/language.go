package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangGo         Language = "go"
)

// LanguageFromExtension maps a file extension (with dot) to a Language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".py":
		return LangPython, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".go":
		return LangGo, true
	default:
		return "", false
	}
}

// LanguageFromPath maps a file path to a Language by its extension.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// LanguageFromName maps a language name to a Language.
func LanguageFromName(name string) (Language, bool) {
	switch strings.ToLower(name) {
	case "python":
		return LangPython, true
	case "javascript":
		return LangJavaScript, true
	case "typescript":
		return LangTypeScript, true
	case "tsx":
		return LangTSX, true
	case "go", "golang":
		return LangGo, true
	default:
		return "", false
	}
}

// SupportedExtensions returns the extensions the parser understands.
func SupportedExtensions() []string {
	return []string{".py", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".mts", ".cts", ".tsx", ".go"}
}
