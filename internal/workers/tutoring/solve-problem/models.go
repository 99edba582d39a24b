// internal/workers/tutoring/solve-problem/models.go
package solveproblem

type Input struct {
	ThreadID string `json:"threadId"`
	SenderID string `json:"senderId"`
	Problem  string `json:"problem"`
}

type Output struct {
	Category string `json:"category"`
	Solution string `json:"solution"`
	Refined  bool   `json:"refined"`
	Cached   bool   `json:"cached"`
}
