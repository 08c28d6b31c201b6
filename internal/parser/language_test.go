package parser

import (
	"testing"
)

func TestLanguageFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
		ok   bool
	}{
		{".py", LangPython, true},
		{".js", LangJavaScript, true},
		{".jsx", LangJavaScript, true},
		{".mjs", LangJavaScript, true},
		{".cjs", LangJavaScript, true},
		{".ts", LangTypeScript, true},
		{".mts", LangTypeScript, true},
		{".cts", LangTypeScript, true},
		{".tsx", LangTSX, true},
		{".go", LangGo, true},
		{".PY", LangPython, true},
		{".rb", "", false},
		{".min.js", "", false}, // filepath.Ext would give .js; raw input unsupported
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := LanguageFromExtension(tt.ext)
			if ok != tt.ok || got != tt.want {
				t.Errorf("LanguageFromExtension(%q) = (%q, %v), want (%q, %v)", tt.ext, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"src/app/main.py", LangPython, true},
		{"lib/index.tsx", LangTSX, true},
		{"cmd/server/main.go", LangGo, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromPath(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("LanguageFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLanguageFromName(t *testing.T) {
	tests := []struct {
		name string
		want Language
		ok   bool
	}{
		{"python", LangPython, true},
		{"Python", LangPython, true},
		{"javascript", LangJavaScript, true},
		{"typescript", LangTypeScript, true},
		{"golang", LangGo, true},
		{"go", LangGo, true},
		{"ruby", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("LanguageFromName(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRegistryReusesParsers(t *testing.T) {
	r := NewRegistry()

	p1, err := r.ForLanguage(LangPython)
	if err != nil {
		t.Fatalf("ForLanguage failed: %v", err)
	}
	p2, err := r.ForLanguage(LangPython)
	if err != nil {
		t.Fatalf("ForLanguage failed: %v", err)
	}
	if p1 != p2 {
		t.Error("expected the same parser instance for repeated lookups")
	}
}

func TestRegistryForPath(t *testing.T) {
	r := NewRegistry()

	_, ok, err := r.ForPath("docs/README.md")
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}
	if ok {
		t.Error("unsupported extension should report ok=false")
	}

	_, ok, err = r.ForPath("pkg/util.py")
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}
	if !ok {
		t.Error("supported extension should report ok=true")
	}
}
