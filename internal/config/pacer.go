package config

import (
	"os"
	"strconv"
	"time"
)

// PacerConfig controls the token bucket that paces outbound requests to the
// ticketing site and the completions API.  Capacity is the burst size,
// RefillTokens tokens are added every RefillInterval, and TTL bounds how long
// idle bucket state survives in Redis.  When Redis is unavailable the pacer
// falls back to a fixed interval equal to RefillInterval.
type PacerConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadPacerConfig builds a PacerConfig from environment variables, applying
// conservative defaults: one request every two seconds with a small burst.
// The defaults mirror the pacing the target site tolerates.
func LoadPacerConfig() PacerConfig {
	def := PacerConfig{
		Enabled:        envBool("PACER_ENABLED", true),
		Capacity:       envInt("PACER_CAPACITY", 3),
		RefillTokens:   envInt("PACER_REFILL_TOKENS", 1),
		RefillInterval: envDur("PACER_REFILL_INTERVAL", 2*time.Second),
		TTL:            envDur("PACER_TTL", 10*time.Minute),
		Prefix:         envStr("PACER_PREFIX", "pace"),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
