package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

var ErrNotAcquired = errors.New("lock not acquired")

// Redis is a SET NX PX lock shared by every API instance.
type Redis struct {
	RDB    redis.UniversalClient
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedis(rdb redis.UniversalClient, ttl, retry time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &Redis{RDB: rdb, Prefix: "lock:", TTL: ttl, Retry: retry}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuid.NewString()
	t := time.NewTicker(r.Retry)
	defer t.Stop()
	for {
		ok, err := r.RDB.SetNX(ctx, k, token, r.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求 ctx 可能已取消，释放用独立 ctx
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = unlockScript.Run(rctx, r.RDB, []string{k}, token).Err()
		})
	}, nil
}
