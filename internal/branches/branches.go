// Package branches provides the static directory of library branch codes.
package branches

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed branches.yaml
var defaultData []byte

// Branch is one library location.
type Branch struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// Directory is an immutable, ordered list of branches.
type Directory struct {
	branches []Branch
}

// Default returns the built-in directory.
func Default() (*Directory, error) {
	return Parse(defaultData)
}

// Parse reads a YAML list of branches. Entries without a code are rejected.
func Parse(data []byte) (*Directory, error) {
	var list []Branch
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse branch list: %w", err)
	}

	for i, b := range list {
		if strings.TrimSpace(b.Code) == "" {
			return nil, fmt.Errorf("branch %d has no code", i)
		}
	}
	return &Directory{branches: list}, nil
}

// All returns every branch, in file order.
func (d *Directory) All() []Branch {
	out := make([]Branch, len(d.branches))
	copy(out, d.branches)
	return out
}

// Find looks a branch up by code, ignoring case.
func (d *Directory) Find(code string) (Branch, bool) {
	code = strings.TrimSpace(code)
	for _, b := range d.branches {
		if strings.EqualFold(b.Code, code) {
			return b, true
		}
	}
	return Branch{}, false
}

// Filter returns branches whose code or name contains term (case-insensitive).
// An empty term returns all branches.
func (d *Directory) Filter(term string) []Branch {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return d.All()
	}

	out := []Branch{}
	for _, b := range d.branches {
		if strings.Contains(strings.ToLower(b.Code), term) || strings.Contains(strings.ToLower(b.Name), term) {
			out = append(out, b)
		}
	}
	return out
}
