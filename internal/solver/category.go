// internal/solver/category.go
package solver

// Category labels the economics topic a problem belongs to. Exactly one
// category is assigned per problem; CategoryGeneral is the catch-all.
type Category string

const (
	CategorySupplyDemand          Category = "supply_demand"
	CategoryElasticity            Category = "elasticity"
	CategoryMarketEquilibrium     Category = "market_equilibrium"
	CategorySurplus               Category = "consumer_producer_surplus"
	CategoryGDP                   Category = "gdp_analysis"
	CategoryInflationUnemployment Category = "inflation_unemployment"
	CategoryMarketStructures      Category = "market_structures"
	CategoryGeneral               Category = "general"
)

// keywordRule couples a category with the substrings that select it.
type keywordRule struct {
	category Category
	keywords []string
}

// keywordRules is evaluated in order and the first category with a hit wins.
// The order is load-bearing: a problem mentioning both "supply" and
// "equilibrium" is classified as supply_demand. Do not reorder without a
// requirements change.
var keywordRules = []keywordRule{
	{CategorySupplyDemand, []string{"supply", "demand", "curve", "shift"}},
	{CategoryElasticity, []string{"elasticity", "elastic", "inelastic", "responsive"}},
	{CategoryMarketEquilibrium, []string{"equilibrium", "market clearing", "intersection"}},
	{CategorySurplus, []string{"consumer surplus", "producer surplus", "deadweight loss"}},
	{CategoryGDP, []string{"gdp", "gross domestic product", "economic growth"}},
	{CategoryInflationUnemployment, []string{"inflation", "unemployment", "cpi", "price level"}},
	{CategoryMarketStructures, []string{"monopoly", "competition", "oligopoly", "market structure"}},
}

// Categories returns every category in priority order, the general fallback
// last.
func Categories() []Category {
	out := make([]Category, 0, len(keywordRules)+1)
	for _, rule := range keywordRules {
		out = append(out, rule.category)
	}
	return append(out, CategoryGeneral)
}
