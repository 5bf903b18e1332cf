// internal/agents/productview/config.go
package productview

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultLimit: 500,
	}
}
