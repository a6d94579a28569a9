package judges

import "time"

// Config holds the sync engine defaults. Per-run Options override them.
type Config struct {
	BatchSize         int    `mapstructure:"batch_size" default:"10"`
	Concurrency       int    `mapstructure:"concurrency" default:"1"`
	Retries           int    `mapstructure:"retries" default:"2"`
	InterBatchDelayMs int    `mapstructure:"inter_batch_delay_ms" default:"2000"`
	SkipWindowHours   int    `mapstructure:"skip_window_hours" default:"0"`
	DiscoverLimit     int    `mapstructure:"discover_limit" default:"300"`
	StaleAfterHours   int    `mapstructure:"stale_after_hours" default:"168"`
	HomeJurisdiction  string `mapstructure:"home_jurisdiction" default:"US"`
	BackoffBaseMs     int    `mapstructure:"backoff_base_ms" default:"500"`
	BackoffCapMs      int    `mapstructure:"backoff_cap_ms" default:"10000"`
	KnownIDsPageSize  int    `mapstructure:"known_ids_page_size" default:"1000"`
}

// StaleAfter is how old a local record must be to be refreshed.
func (c Config) StaleAfter() time.Duration {
	if c.StaleAfterHours <= 0 {
		return 0
	}
	return time.Duration(c.StaleAfterHours) * time.Hour
}

func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMs) * time.Millisecond
}

func (c Config) BackoffCap() time.Duration {
	return time.Duration(c.BackoffCapMs) * time.Millisecond
}
