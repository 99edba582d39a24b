// internal/workers/tutoring/llm-refine/models.go
package llmrefine

type Input struct {
	Question string `json:"question"`
	Draft    string `json:"draft"`
}

type Output struct {
	Refined string `json:"refined"`
}
