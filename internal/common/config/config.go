// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Coral    CoralConfig             `mapstructure:"coral"`
	Database DatabaseConfig          `mapstructure:"database"`
	Solver   SolverConfig            `mapstructure:"solver"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Metrics  MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// CoralConfig holds the connection settings for the Coral orchestration server.
type CoralConfig struct {
	ServerURL        string `mapstructure:"server_url"`
	AgentID          string `mapstructure:"agent_id"`
	AgentDescription string `mapstructure:"agent_description"`
	WaitTimeout      int    `mapstructure:"wait_timeout"`       // milliseconds, long-poll window
	LoopSleep        int    `mapstructure:"loop_sleep"`         // milliseconds between successful iterations
	ErrorBackoff     int    `mapstructure:"error_backoff"`      // milliseconds after a failed iteration
	ConnectTimeout   int    `mapstructure:"connect_timeout"`    // milliseconds
	RequestTimeout   int    `mapstructure:"request_timeout"`    // milliseconds
	MaxRetries       int    `mapstructure:"max_retries"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SolverConfig holds settings for the template-backed problem solver.
type SolverConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"` // empty means embedded templates
	CacheTTL     int    `mapstructure:"cache_ttl"`     // seconds, 0 disables the solution cache
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

// GenAIConfig holds settings for the optional LLM refinement step.
type GenAIConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds settings for the Prometheus/health HTTP endpoint.
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}
