// internal/solver/classifier.go
package solver

import "strings"

// Classify maps free-text problem input to a topic category using
// case-insensitive substring matching against the ordered keyword table.
// It is total: any input, including the empty string, yields a category.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}
