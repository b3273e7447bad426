package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/midnight-circuit/pkg/response"
)

const rateKeyPrefix = "rl:"

// KeyFunc builds the counter key a request is charged to.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

// clientIP prefers the address resolved by RealIP.
func clientIP(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByIP charges every request of a client to one counter.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return rateKeyPrefix + "ip:" + clientIP(c) }
}

// KeyByIPAndPath keeps one counter per client and route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return rateKeyPrefix + "path:" + routeOf(c) + ":ip:" + clientIP(c)
	}
}

// KeyByUserID charges authenticated callers by account; anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString("userID"); uid != "" {
			return rateKeyPrefix + "user:" + uid
		}
		return rateKeyPrefix + "user:anon:ip:" + clientIP(c)
	}
}

// fixedWindow increments the counter, opens the window on the first hit and
// returns {count, remaining window in ms}.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit allows limit requests per key and window, then answers 429 until
// the window closes. Redis errors let the request through. Counters are kept
// per limit and window, so stacked limiters with the same key function never
// charge one counter twice.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	policy := strconv.Itoa(limit) + "/" + strconv.FormatInt(window.Milliseconds(), 10) + ":"
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, reset, err := hit(c, rdb, policy+keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(int64(limit)-count, 0), 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))
		if count > int64(limit) {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

// hit charges one request to key and returns the new count and the seconds
// until the window resets, rounded up.
func hit(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int64, int, error) {
	vals, err := fixedWindow.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, redis.Nil
	}
	reset := 0
	if ms := vals[1]; ms > 0 {
		reset = int((ms + 999) / 1000)
	}
	return vals[0], reset, nil
}
