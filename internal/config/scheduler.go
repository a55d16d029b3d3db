package config

import (
	"strconv"
	"strings"
	"time"
)

// SchedulerConfig controls the built-in scrape scheduler.  ReviewHour is the
// local hour (0-23) at which the daily review scrape of all stored concerts
// runs; SeatHours lists the hours for seat-snapshot scrapes.  LockTTL bounds
// the Redis run lock so a crashed run cannot block the schedule forever.
type SchedulerConfig struct {
	Enabled    bool
	ReviewHour int
	SeatHours  []int
	LockTTL    time.Duration
}

// LoadSchedulerConfig builds a SchedulerConfig from environment variables.
// The defaults reproduce the production schedule: reviews at 03:00, seat
// snapshots every six hours.
func LoadSchedulerConfig() SchedulerConfig {
	def := SchedulerConfig{
		Enabled:    envBool("SCHEDULER_ENABLED", true),
		ReviewHour: envInt("SCHEDULER_REVIEW_HOUR", 3),
		SeatHours:  envHours("SCHEDULER_SEAT_HOURS", []int{0, 6, 12, 18}),
		LockTTL:    envDur("SCHEDULER_LOCK_TTL", 2*time.Hour),
	}
	if def.ReviewHour < 0 || def.ReviewHour > 23 {
		def.ReviewHour = 3
	}
	if def.LockTTL <= 0 {
		def.LockTTL = 2 * time.Hour
	}
	return def
}

// envHours parses a comma-separated list of hours, discarding values outside
// 0-23.  The default is returned when the variable is unset or nothing
// parses.
func envHours(key string, d []int) []int {
	raw := envStr(key, "")
	if raw == "" {
		return d
	}
	var out []int
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil && n >= 0 && n <= 23 {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return d
	}
	return out
}
