// Package middleware holds the echo middleware for the report surface.
// The response cache keeps recomputing the heavier reports (TF-IDF,
// clustering, co-attendance) off the request path: every report is a pure
// function of the stored data, so a short TTL is the only invalidation
// needed.
package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jwlee-dev/encoreview/internal/config"
)

// captureWriter tees the response body and status while forwarding to the
// client, so a successful response can be cached after it is sent.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes method, concrete request path and raw query under the
// configured prefix.  The request path, not the matched route pattern,
// goes into the hash so parameterised report routes get one entry per
// concert and analysis type.  Hashing keeps user-supplied query strings
// out of Redis key space.
func cacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + ":" + r.URL.Path + ":" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// Cached payload layout: [4 bytes status][content-type length][content-type][body].
func encodePayload(status int, contentType string, body []byte) []byte {
	out := make([]byte, 8+len(contentType)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(contentType)))
	copy(out[8:], contentType)
	copy(out[8+len(contentType):], body)
	return out
}

func decodePayload(bs []byte) (status int, contentType string, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, "", nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	clen := int(binary.BigEndian.Uint32(bs[4:8]))
	if clen < 0 || 8+clen > len(bs) {
		return 0, "", nil, false
	}
	return status, string(bs[8 : 8+clen]), bs[8+clen:], true
}

// ResponseCache caches successful responses of the configured methods in
// Redis.  A nil client or a disabled config yields a pass-through
// middleware, so the report surface works without Redis.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, contentType, body, ok := decodePayload(bs); ok {
					if contentType != "" {
						c.Response().Header().Set(echo.HeaderContentType, contentType)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only cache complete 200 responses; a truncated capture means
			// the body outgrew the limit.
			if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
				contentType := c.Response().Header().Get(echo.HeaderContentType)
				payload := encodePayload(cw.status, contentType, cw.buf.Bytes())
				_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}
