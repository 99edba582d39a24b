// internal/workers/tutoring/solve-problem/config.go
package solveproblem

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: 1 * time.Hour,
	}
}
