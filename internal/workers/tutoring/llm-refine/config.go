// internal/workers/tutoring/llm-refine/config.go
package llmrefine

import "time"

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    60 * time.Second,
		MaxRetries: 1,
	}
}
