package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 5 * time.Second

// Cache 读穿缓存：Redis 不可用时直接回源，不影响主流程
//
// 每个 key 带一个版本号（<key>:gen），数据存在 <key>:<gen> 下。
// 写操作只递增版本号，写入前开始的回源即使晚到也只会落在旧版本上。
type Cache struct {
	RDB         redis.UniversalClient
	Prefix      string
	LoadTimeout time.Duration
	sf          singleflight.Group
}

func NewClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func New(rdb redis.UniversalClient) *Cache {
	return &Cache{RDB: rdb, Prefix: "timeslots:", LoadTimeout: defaultLoadTimeout}
}

func (c *Cache) Key(parts ...string) string {
	k := c.Prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func genKey(key string) string { return key + ":gen" }

// generation 返回当前版本号，不存在时为 "0"
func (c *Cache) generation(ctx context.Context, key string) (string, error) {
	g, err := c.RDB.Get(ctx, genKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return g, err
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	gen, err := c.generation(ctx, key)
	if err != nil {
		// Redis 不可用：直接回源，不写缓存
		return load(ctx)
	}
	dataKey := key + ":" + gen

	// 先读缓存
	if b, err := c.RDB.Get(ctx, dataKey).Bytes(); err == nil {
		return b, nil
	}

	// single flight 合并回源；回源不受发起者取消影响，由 LoadTimeout 兜底
	ch := c.sf.DoChan(dataKey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(lctx, dataKey, b, ttl).Err()
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Cache) loadTimeout() time.Duration {
	if c.LoadTimeout <= 0 {
		return defaultLoadTimeout
	}
	return c.LoadTimeout
}

// Invalidate bumps the generation of each key after a write; readers move to a fresh data key.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.RDB.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
		}
		return nil
	})
	return err
}
