package parser

import (
	"sync"
)

// Registry hands out one parser instance per language. Parsers are created
// lazily and reused across files; this is shared mutable state by design,
// so all access goes through the mutex.
type Registry struct {
	mu      sync.Mutex
	parsers map[Language]*Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[Language]*Parser)}
}

// ForLanguage returns the cached parser for a language, creating it on
// first use.
func (r *Registry) ForLanguage(lang Language) (*Parser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsers[lang]; ok {
		return p, nil
	}
	p, err := NewParser(lang)
	if err != nil {
		return nil, err
	}
	r.parsers[lang] = p
	return p, nil
}

// ForPath returns the cached parser for a file path, or ok=false when the
// extension is not supported.
func (r *Registry) ForPath(path string) (*Parser, bool, error) {
	lang, ok := LanguageFromPath(path)
	if !ok {
		return nil, false, nil
	}
	p, err := r.ForLanguage(lang)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
