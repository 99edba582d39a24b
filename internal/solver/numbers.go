// internal/solver/numbers.go
package solver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// numberPattern matches an optional minus sign, digits, and an optional
// decimal part, e.g. "100", "-2", "3.50".
var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// ExtractNumbers scans text left to right and returns every numeric token as
// a float, in order of appearance. Tokens that fail to parse are skipped.
func ExtractNumbers(text string) []float64 {
	matches := numberPattern.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, v)
	}
	return numbers
}

// ElasticityReading is the computed interpretation of the first four numbers
// found in an elasticity problem, bound positionally as (q1, q2, p1, p2).
type ElasticityReading struct {
	InitialQuantity   float64
	NewQuantity       float64
	InitialPrice      float64
	NewPrice          float64
	PctChangeQuantity float64
	PctChangePrice    float64
	Elasticity        float64
	Label             string
}

// InterpretElasticity derives a price-elasticity reading from extracted
// numbers. It is best-effort by contract: fewer than four numbers, a zero
// initial quantity or price, or a zero price change all yield (nil, false)
// so the caller keeps the base template unmodified. It never panics and
// never returns an error.
func InterpretElasticity(numbers []float64) (*ElasticityReading, bool) {
	if len(numbers) < 4 {
		return nil, false
	}
	q1, q2, p1, p2 := numbers[0], numbers[1], numbers[2], numbers[3]
	if q1 == 0 || p1 == 0 {
		return nil, false
	}

	pctQ := ((q2 - q1) / q1) * 100
	pctP := ((p2 - p1) / p1) * 100
	if pctP == 0 {
		return nil, false
	}

	elasticity := math.Abs(pctQ / pctP)
	if math.IsNaN(elasticity) || math.IsInf(elasticity, 0) {
		return nil, false
	}

	label := "Unit Elastic"
	switch {
	case elasticity > 1:
		label = "Elastic"
	case elasticity < 1:
		label = "Inelastic"
	}

	return &ElasticityReading{
		InitialQuantity:   q1,
		NewQuantity:       q2,
		InitialPrice:      p1,
		NewPrice:          p2,
		PctChangeQuantity: pctQ,
		PctChangePrice:    pctP,
		Elasticity:        elasticity,
		Label:             label,
	}, true
}

// Section renders the numeric block appended to the elasticity template.
func (r *ElasticityReading) Section() string {
	return fmt.Sprintf(`

**Numerical Calculation (if applicable):**
- Initial Quantity: %g, New Quantity: %g
- Initial Price: %g, New Price: %g
- %% Change in Quantity: %.2f%%
- %% Change in Price: %.2f%%
- Price Elasticity: |%.2f/%.2f| = %.2f
- Interpretation: %s
`,
		r.InitialQuantity, r.NewQuantity,
		r.InitialPrice, r.NewPrice,
		r.PctChangeQuantity,
		r.PctChangePrice,
		r.PctChangeQuantity, r.PctChangePrice, r.Elasticity,
		r.Label,
	)
}
