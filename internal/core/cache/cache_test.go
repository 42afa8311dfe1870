package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 指向不可达地址：所有 Redis 调用失败，验证回源路径
func downCache() *Cache {
	return New(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	}))
}

func liveCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestKey(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "timeslots:hr:abc", c.Key("hr", "abc"))
}

func TestGetOrLoadJSON_FallsBackWhenRedisDown(t *testing.T) {
	c := downCache()
	defer c.RDB.Close()

	calls := 0
	got, err := GetOrLoadJSON(c, context.Background(), c.Key("hr", "x"), time.Minute,
		func(context.Context) ([]string, error) {
			calls++
			return []string{"a", "b"}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadJSON_LoaderError(t *testing.T) {
	c := downCache()
	defer c.RDB.Close()

	boom := errors.New("boom")
	_, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute,
		func(context.Context) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvalidate_NoKeys(t *testing.T) {
	c := downCache()
	defer c.RDB.Close()
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestGetOrLoadJSON_HitSkipsLoader(t *testing.T) {
	c, mr := liveCache(t)
	ctx := context.Background()
	key := c.Key("hr", "x")

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, ctx, key, time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got)
	}
	assert.Equal(t, 1, calls)

	raw, err := mr.Get(key + ":0")
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, raw)
	assert.Greater(t, mr.TTL(key+":0"), time.Duration(0))
}

func TestInvalidate_NextReadReloads(t *testing.T) {
	c, mr := liveCache(t)
	ctx := context.Background()
	key := c.Key("hr", "x")

	value := "old"
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return value, nil
	}
	got, err := GetOrLoadJSON(c, ctx, key, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "old", got)

	value = "new"
	require.NoError(t, c.Invalidate(ctx, key))
	gen, err := mr.Get(key + ":gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	got, err = GetOrLoadJSON(c, ctx, key, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "new", got)
	assert.Equal(t, 2, calls)
}

// 写入前开始的回源在失效之后才写缓存，不能覆盖新数据
func TestInvalidate_LateLoadDoesNotResurrectStaleValue(t *testing.T) {
	c, _ := liveCache(t)
	ctx := context.Background()
	key := c.Key("hr", "x")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		got, err := GetOrLoadJSON(c, ctx, key, time.Minute, func(context.Context) (string, error) {
			close(entered)
			<-release
			return "stale", nil
		})
		assert.NoError(t, err)
		done <- got
	}()

	<-entered
	require.NoError(t, c.Invalidate(ctx, key))
	close(release)
	assert.Equal(t, "stale", <-done)

	got, err := GetOrLoadJSON(c, ctx, key, time.Minute, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestGetOrLoad_CallerCancelDoesNotAbortLoad(t *testing.T) {
	c, mr := liveCache(t)
	key := c.Key("hr", "x")

	ctx, cancel := context.WithCancel(context.Background())
	loaded := make(chan error, 1)
	release := make(chan struct{})
	go func() {
		<-release
		cancel()
	}()

	_, err := c.GetOrLoad(ctx, key, time.Minute, func(lctx context.Context) ([]byte, error) {
		close(release)
		// 发起者取消后回源仍继续
		time.Sleep(50 * time.Millisecond)
		loaded <- lctx.Err()
		return []byte(`"ok"`), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, <-loaded)

	assert.Eventually(t, func() bool { return mr.Exists(key + ":0") }, time.Second, 10*time.Millisecond)
}

func TestGetOrLoad_LoadTimeout(t *testing.T) {
	c, _ := liveCache(t)
	c.LoadTimeout = 20 * time.Millisecond

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(lctx context.Context) ([]byte, error) {
		<-lctx.Done()
		return nil, lctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
