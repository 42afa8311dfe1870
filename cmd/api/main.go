package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"interview-scheduler/internal/bootstrap"
	"interview-scheduler/internal/core/auth"
	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/events"
	"interview-scheduler/internal/core/logger"
	"interview-scheduler/internal/core/server"
	"interview-scheduler/internal/service"
	"interview-scheduler/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 存储（失败直接 Fatal）
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()
	if store.Mongo != nil {
		if err := store.Mongo.EnsureIndexes(ctx); err != nil {
			log.Fatal("ensure indexes", zap.Error(err))
		}
	}
	log.Info("store connected", zap.String("driver", cfg.Store.Driver))

	// 锁 / 缓存
	coord, err := bootstrap.OpenCoordination(ctx, cfg, log)
	if err != nil {
		log.Fatal("redis open", zap.Error(err))
	}
	defer coord.Close()

	pub := events.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue, log.Named("events"))
	svc := service.NewTimeSlotService(store, coord.Locker, log.Named("timeslot"),
		service.WithCache(coord.Cache, time.Duration(cfg.Cache.TTLSec)*time.Second),
		service.WithPublisher(pub),
	)
	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTLMin)

	r, err := router.NewAPIEngine(log, router.APIDeps{Slots: svc, JWTer: jwter, Cfg: cfg})
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("scheduler api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("timeslots", baseURL+"/timeslots"),
		zap.Bool("jwt_required", cfg.JWT.Required),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("scheduler api stopped with error", zap.Error(err))
		return
	}
	log.Info("scheduler api stopped gracefully")
}
