package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"interview-scheduler/internal/core/cache"
	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/database"
	"interview-scheduler/internal/core/lock"
	"interview-scheduler/internal/domain"
	"interview-scheduler/internal/repo"
)

// Store 按 store.driver 打开的时间段存储；Mongo 时额外暴露具体仓库以便建索引
type Store struct {
	domain.SlotStore
	Mongo *repo.TimeSlotMongoRepo
	Close func()
}

func OpenStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case "mongo", "":
		mc := cfg.Store.Mongo
		client, db, err := database.NewMongo(ctx, database.MongoOpts{
			URI:      mc.URI,
			Database: mc.Database,
			Timeout:  time.Duration(mc.TimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		r := repo.NewTimeSlotMongoRepo(db.Collection(mc.Collection))
		return &Store{SlotStore: r, Mongo: r, Close: func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(cctx)
		}}, nil

	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.Store.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Logger:             l,
		})
		if err != nil {
			return nil, err
		}
		r := repo.NewTimeSlotSQLRepo(db)
		if cfg.DB.AutoMigrate {
			if err := r.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			l.Info("automigrate done")
		}
		return &Store{SlotStore: r, Close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}}, nil

	case "memory":
		l.Warn("using in-memory store, data is lost on restart")
		return &Store{SlotStore: repo.NewTimeSlotMemoryRepo(), Close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Coordination 锁与缓存：配置了 redis.addr 才走 Redis，否则进程内锁、不缓存
type Coordination struct {
	Locker lock.Locker
	Cache  *cache.Cache
	Close  func()
}

func OpenCoordination(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Coordination, error) {
	if cfg.Redis.Addr == "" {
		l.Info("redis not configured, using in-process owner lock")
		return &Coordination{Locker: lock.NewLocal(), Close: func() {}}, nil
	}
	rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Coordination{
		Locker: lock.NewRedis(rdb,
			time.Duration(cfg.Lock.TTLMs)*time.Millisecond,
			time.Duration(cfg.Lock.RetryMs)*time.Millisecond),
		Cache: newCache(rdb, cfg.Cache.TTLSec),
		Close: func() { _ = rdb.Close() },
	}, nil
}

func newCache(rdb redis.UniversalClient, ttlSec int) *cache.Cache {
	if ttlSec <= 0 {
		return nil
	}
	return cache.New(rdb)
}
