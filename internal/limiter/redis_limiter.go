package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// incrWindow bumps the window counter and sets its expiry in one atomic step.
var incrWindow = rueidis.NewLuaScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter keeps counters in Redis so every API instance shares them.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ttl := int64(r.window / time.Second)
	if ttl < 1 {
		ttl = 1
	}

	count, err := incrWindow.Exec(ctx, r.client, []string{r.windowKey(key)}, []string{strconv.FormatInt(ttl, 10)}).AsInt64()
	if err != nil {
		return false, err
	}

	return count <= int64(r.limit), nil
}

func (r *RedisLimiter) windowKey(key string) string {
	slot := r.now().UnixNano() / int64(r.window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, slot)
}
