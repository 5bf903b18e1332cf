// internal/agents/periodcompare/config.go
package periodcompare

import "time"

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
