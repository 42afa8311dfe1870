package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, time.Second, 2*time.Millisecond), mr
}

func TestRedis_SerializesSameKey(t *testing.T) {
	// 两个实例共享同一个 Redis
	a, mr := newRedisLock(t)
	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Second, 2*time.Millisecond)
	t.Cleanup(func() { _ = b.RDB.Close() })

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		l := a
		if i%2 == 1 {
			l = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "hr:hr-1")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.False(t, mr.Exists("lock:hr:hr-1"))
}

func TestRedis_LockSetsTTL(t *testing.T) {
	l, mr := newRedisLock(t)
	unlock, err := l.Lock(context.Background(), "hr:hr-1")
	require.NoError(t, err)
	defer unlock()

	assert.True(t, mr.Exists("lock:hr:hr-1"))
	assert.Equal(t, time.Second, mr.TTL("lock:hr:hr-1"))
}

func TestRedis_UnlockKeepsOtherHoldersToken(t *testing.T) {
	l, mr := newRedisLock(t)
	unlock, err := l.Lock(context.Background(), "hr:hr-1")
	require.NoError(t, err)

	// 锁过期后被其他实例拿到
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("lock:hr:hr-1"))
	other, err := l.Lock(context.Background(), "hr:hr-1")
	require.NoError(t, err)
	token, err := mr.Get("lock:hr:hr-1")
	require.NoError(t, err)

	unlock()
	got, err := mr.Get("lock:hr:hr-1")
	require.NoError(t, err)
	assert.Equal(t, token, got)

	other()
	assert.False(t, mr.Exists("lock:hr:hr-1"))
}

func TestRedis_ContextTimeoutWhileHeld(t *testing.T) {
	l, _ := newRedisLock(t)
	unlock, err := l.Lock(context.Background(), "hr:hr-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "hr:hr-1")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedis_DifferentKeysDoNotBlock(t *testing.T) {
	l, _ := newRedisLock(t)
	unlockA, err := l.Lock(context.Background(), "hr:hr-1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(ctx, "hr:hr-2")
	require.NoError(t, err)
	unlockB()
}
