// pkg/templates/registry.go
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed assets/*.md
var embedded embed.FS

// Required lists the category files every template set must provide, in
// classifier priority order with the general fallback last.
var Required = []string{
	"supply_demand",
	"elasticity",
	"market_equilibrium",
	"consumer_producer_surplus",
	"gdp_analysis",
	"inflation_unemployment",
	"market_structures",
	"general",
}

// Registry holds the pre-authored tutoring templates, one per category.
// Templates are opaque content loaded once at startup; the registry is
// read-only afterwards.
type Registry struct {
	byCategory map[string]string
}

// Load reads one markdown file per category from dir. An empty dir loads the
// embedded default set shipped with the binary. A set missing any required
// category is rejected so lookups stay total at runtime.
func Load(dir string) (*Registry, error) {
	byCategory := make(map[string]string, len(Required))

	for _, category := range Required {
		var (
			data []byte
			err  error
		)
		if dir == "" {
			data, err = embedded.ReadFile("assets/" + category + ".md")
		} else {
			data, err = os.ReadFile(filepath.Join(dir, category+".md"))
		}
		if err != nil {
			return nil, fmt.Errorf("load template %q: %w", category, err)
		}
		text := strings.TrimRight(string(data), "\n")
		if text == "" {
			return nil, fmt.Errorf("load template %q: file is empty", category)
		}
		byCategory[category] = text
	}

	return &Registry{byCategory: byCategory}, nil
}

// Get returns the base template for a category.
func (r *Registry) Get(category string) (string, bool) {
	text, ok := r.byCategory[category]
	return text, ok
}

// Categories returns the loaded category names in priority order.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(Required))
	for _, category := range Required {
		if _, ok := r.byCategory[category]; ok {
			out = append(out, category)
		}
	}
	return out
}
