package config

import "time"

// PollCacheConfig controls the short-TTL cache in front of the session
// read endpoint. Poll clients fetch at ~1Hz, so a TTL around one second
// collapses a whole fleet of pollers into one database read per room per
// window while keeping staleness inside the bound the protocol promises.
type PollCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadPollCacheConfig reads cache settings from the environment with
// defaults matching the ~1Hz poll interval.
func LoadPollCacheConfig() PollCacheConfig {
	cfg := PollCacheConfig{
		Enabled: getenv("POLL_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("POLL_CACHE_TTL", "1s")),
		Prefix:  getenv("POLL_CACHE_PREFIX", "poll"),
	}
	if cfg.TTL <= 0 || cfg.TTL > 5*time.Second {
		cfg.TTL = time.Second
	}
	return cfg
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
