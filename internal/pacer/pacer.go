// Package pacer implements a Redis-backed token bucket that paces outbound
// requests against downstream rate limits.  The bucket state lives in
// Redis so that several processes scraping the same site share one budget.
// When Redis is unavailable the pacer degrades to fixed-interval pacing in
// process, which is the floor the downstream sites tolerate.
package pacer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwlee-dev/encoreview/internal/config"
)

// tokenScript refills and takes from the bucket atomically.  It returns
// {allowed, remaining_tokens, retry_after_ms}.
var tokenScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// Pacer grants permission to issue one downstream request at a time.
// Wait blocks until a token is available or the context is cancelled.
type Pacer struct {
	cfg config.PacerConfig
	rdb *redis.Client
	key string

	mu       sync.Mutex
	lastCall time.Time // fallback pacing state when Redis is unavailable
}

// New builds a Pacer for one downstream, e.g. "ticket" or "openai".  The
// name scopes the bucket so the scraper and the enricher do not share a
// budget.  rdb may be nil; the pacer then paces in process.
func New(cfg config.PacerConfig, rdb *redis.Client, name string) *Pacer {
	return &Pacer{
		cfg: cfg,
		rdb: rdb,
		key: fmt.Sprintf("%s:%s", cfg.Prefix, name),
	}
}

// Wait blocks until the bucket grants a token.  It returns the context's
// error when cancelled while waiting.  A disabled pacer returns
// immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.cfg.Enabled {
		return nil
	}
	for {
		if p.rdb == nil {
			return p.waitLocal(ctx)
		}
		allowed, retryAfter, err := p.take(ctx)
		if err != nil {
			// Redis trouble must not stall the pipeline; fall back to
			// local pacing for this call.
			return p.waitLocal(ctx)
		}
		if allowed {
			return nil
		}
		if retryAfter <= 0 {
			retryAfter = p.cfg.RefillInterval
		}
		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take runs the bucket script once.
func (p *Pacer) take(ctx context.Context) (allowed bool, retryAfter time.Duration, err error) {
	args := []interface{}{
		time.Now().UnixMilli(),
		p.cfg.Capacity,
		p.cfg.RefillTokens,
		p.cfg.RefillInterval.Milliseconds(),
		int64(p.cfg.TTL / time.Second),
	}
	vals, err := tokenScript.Run(ctx, p.rdb, []string{p.key}, args...).Result()
	if err != nil {
		return false, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return false, 0, fmt.Errorf("pacer: unexpected script result %#v", vals)
	}
	allowed = asInt64(arr[0]) == 1
	retryAfter = time.Duration(asInt64(arr[2])) * time.Millisecond
	return allowed, retryAfter, nil
}

// waitLocal enforces one call per refill interval within this process.
func (p *Pacer) waitLocal(ctx context.Context) error {
	p.mu.Lock()
	next := p.lastCall.Add(p.cfg.RefillInterval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	p.lastCall = next
	p.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case float32:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
