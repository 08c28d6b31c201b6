// Package license categorizes repository licenses so callers know
// whether fetched code is safe to reuse.
package license

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Category is the reuse verdict for a license.
type Category string

const (
	// SafeToUse marks permissive licenses.
	SafeToUse Category = "SAFE_TO_USE"
	// ViralWarning marks copyleft licenses that can encumber downstream code.
	ViralWarning Category = "VIRAL_LICENSE_WARNING"
	// ReviewRequired marks everything else, including unknown licenses.
	ReviewRequired Category = "REVIEW_REQUIRED"
)

// Permissive licenses, by lowercase SPDX id.
var safeLicenses = map[string]bool{
	"mit": true, "apache-2.0": true, "bsd-2-clause": true, "bsd-3-clause": true,
	"isc": true, "cc0-1.0": true, "unlicense": true, "0bsd": true,
}

// Copyleft licenses, by lowercase SPDX id.
var viralLicenses = map[string]bool{
	"gpl-2.0": true, "gpl-3.0": true, "agpl-3.0": true, "lgpl-2.1": true,
	"lgpl-3.0": true, "mpl-2.0": true, "epl-1.0": true, "epl-2.0": true,
	"eupl-1.1": true, "eupl-1.2": true,
}

// Policy resolves SPDX ids to categories. Overrides loaded from the
// policy file take precedence over the builtin sets.
type Policy struct {
	overrides map[string]Category
}

type policyFile struct {
	Categories map[string]string `toml:"categories"`
}

// DefaultPolicy returns the builtin policy with no overrides.
func DefaultPolicy() *Policy {
	return &Policy{overrides: map[string]Category{}}
}

// LoadPolicy reads <configDir>/license-policy.toml. A missing file
// yields the default policy.
func LoadPolicy(configDir string) (*Policy, error) {
	path := filepath.Join(configDir, "license-policy.toml")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return nil, err
	}

	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse license policy: %w", err)
	}

	p := DefaultPolicy()
	for spdx, cat := range file.Categories {
		category := Category(cat)
		switch category {
		case SafeToUse, ViralWarning, ReviewRequired:
			p.overrides[strings.ToLower(spdx)] = category
		default:
			return nil, fmt.Errorf("invalid category %q for license %q", cat, spdx)
		}
	}
	return p, nil
}

// Categorize maps an SPDX id to its reuse category.
func (p *Policy) Categorize(spdxID string) Category {
	lower := strings.ToLower(spdxID)
	if cat, ok := p.overrides[lower]; ok {
		return cat
	}
	if safeLicenses[lower] {
		return SafeToUse
	}
	if viralLicenses[lower] {
		return ViralWarning
	}
	return ReviewRequired
}

// Advice returns the caller-facing explanation for a category.
func Advice(cat Category) string {
	switch cat {
	case SafeToUse:
		return "This is a permissive license. You can generally use this code freely."
	case ViralWarning:
		return "WARNING: This is a copyleft license. Using this code may require you to open-source your own code. Review the license terms carefully."
	default:
		return "This license requires review. Check the license terms before using this code."
	}
}
