package cache

import "time"

// Config holds configuration for the optional Redis connection.
type Config struct {
	// URL is a redis:// connection URL. Empty disables Redis.
	URL string `mapstructure:"url" default:""`
	// KeyPrefix namespaces every key written by the engine.
	KeyPrefix string `mapstructure:"key_prefix" default:"judge-sync:fresh:"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size" default:"10"`
	// TimeoutSeconds bounds dial, read and write operations.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}

// Timeout returns TimeoutSeconds as a duration, defaulting to five seconds.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
