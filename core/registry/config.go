package registry

import "time"

// Config holds configuration for the remote registry client.
type Config struct {
	// BaseURL is the API root; endpoint paths are resolved against it.
	BaseURL string `mapstructure:"base_url" default:"https://www.courtlistener.com/api/rest/v4/"`
	// Token is the API token sent in the Authorization header.
	Token string `mapstructure:"token" default:""`
	// AuthScheme prefixes the token in the Authorization header.
	AuthScheme string `mapstructure:"auth_scheme" default:"Bearer"`
	// TimeoutSeconds bounds every remote call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PageDelayMs is the minimum delay between consecutive listing pages.
	PageDelayMs int `mapstructure:"page_delay_ms" default:"800"`
	// UserAgent identifies the engine to the registry operators.
	UserAgent string `mapstructure:"user_agent" default:"judge-sync/1.0"`
}

// Timeout returns the per-call timeout, defaulting to 30s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PageDelay returns the minimum delay between listing pages.
// Negative values disable pacing.
func (c Config) PageDelay() time.Duration {
	if c.PageDelayMs < 0 {
		return 0
	}
	return time.Duration(c.PageDelayMs) * time.Millisecond
}
