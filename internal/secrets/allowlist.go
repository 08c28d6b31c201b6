package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// AllowlistEntry defines a suppression rule. Type is "rule" to disable
// a whole builtin pattern, or "pattern" to whitelist values matching a
// regular expression.
type AllowlistEntry struct {
	Type   string `yaml:"type"`
	Value  string `yaml:"value"`
	Reason string `yaml:"reason,omitempty"`
}

type allowlistFile struct {
	Entries []AllowlistEntry `yaml:"entries"`
}

// Allowlist suppresses redaction for known-safe values.
type Allowlist struct {
	entries       []AllowlistEntry
	rules         map[string]bool
	valuePatterns []*regexp.Regexp
}

// LoadAllowlist reads the allowlist from <configDir>/secrets-allowlist.yaml.
// A missing file yields an empty allowlist.
func LoadAllowlist(configDir string) (*Allowlist, error) {
	path := filepath.Join(configDir, "secrets-allowlist.yaml")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Allowlist{rules: make(map[string]bool)}, nil
	}
	if err != nil {
		return nil, err
	}

	var file allowlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist: %w", err)
	}

	al := &Allowlist{
		entries: file.Entries,
		rules:   make(map[string]bool),
	}
	for _, e := range file.Entries {
		switch e.Type {
		case "rule":
			al.rules[e.Value] = true
		case "pattern":
			re, err := regexp.Compile(e.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid allowlist pattern %q: %w", e.Value, err)
			}
			al.valuePatterns = append(al.valuePatterns, re)
		}
	}
	return al, nil
}

// IsSuppressed reports whether a finding should be left unredacted.
func (al *Allowlist) IsSuppressed(f *Finding) bool {
	if al == nil {
		return false
	}
	if al.rules[f.Rule] {
		return true
	}
	for _, re := range al.valuePatterns {
		if re.MatchString(f.Match) {
			return true
		}
	}
	return false
}
