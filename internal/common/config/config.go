// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Memory   MemoryConfig   `mapstructure:"memory"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// SupabaseConfig points at the tabular data service. Authentication uses the
// same static key as both the apikey header and the bearer token, which is how
// the hosted service expects anonymous-role access.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	AnonKey    string `mapstructure:"anon_key"`
	Timeout    int    `mapstructure:"timeout"`     // milliseconds
	MaxRetries int    `mapstructure:"max_retries"` // transient 5xx only
}

type LLMConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type MemoryConfig struct {
	MaxHistory    int `mapstructure:"max_history"`    // retained turns per session
	ContextWindow int `mapstructure:"context_window"` // turns sent to the LLM
	SessionTTL    int `mapstructure:"session_ttl"`    // seconds of idle time
}

// AgentsConfig holds the per-agent runtime knobs, keyed by agent name.
type AgentsConfig map[string]AgentConfig

type AgentConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Timeout      int  `mapstructure:"timeout"` // milliseconds
	DefaultLimit int  `mapstructure:"default_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
