// internal/solver/solver.go
package solver

import (
	"economics-agent/pkg/templates"
)

// Solver assembles step-by-step tutoring answers for economics problems.
// Each call is pure with respect to its input text: classify, pick the
// category template, and for elasticity problems append a computed reading
// when the input carries enough numbers.
type Solver struct {
	registry *templates.Registry
}

// Solution is the assembled answer for one problem.
type Solution struct {
	Category Category
	Text     string
}

func New(registry *templates.Registry) *Solver {
	return &Solver{registry: registry}
}

// Solve never fails: classification is total and the numeric interpretation
// is strictly best-effort, so the worst case is the general template.
func (s *Solver) Solve(problem string) Solution {
	category := Classify(problem)

	text, ok := s.registry.Get(string(category))
	if !ok {
		// Registries are validated for completeness at load time, so this
		// only happens with a hand-edited custom template set.
		text, _ = s.registry.Get(string(CategoryGeneral))
	}

	if category == CategoryElasticity {
		if reading, ok := InterpretElasticity(ExtractNumbers(problem)); ok {
			text += reading.Section()
		}
	}

	return Solution{Category: category, Text: text}
}
