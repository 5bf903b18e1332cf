// internal/agents/clusterview/config.go
package clusterview

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultLimit: 10,
	}
}
