package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"interview-scheduler/internal/bootstrap"
	"interview-scheduler/internal/core/auth"
	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/logger"
	"interview-scheduler/internal/core/server"
	"interview-scheduler/internal/service"
	"interview-scheduler/internal/transport/http/router"
)

func main() {
	issueToken := flag.Bool("issue-admin-token", false, "print an admin token and exit")
	subject := flag.String("subject", "admin", "uid carried by the issued admin token")
	ensureIndexes := flag.Bool("ensure-indexes", false, "create mongo indexes and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	jwter := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTLMin)

	// 一次性命令
	if *issueToken {
		tok, err := jwter.Issue(*subject, auth.RoleAdmin)
		if err != nil {
			log.Fatal("issue admin token", zap.Error(err))
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()

	if *ensureIndexes {
		if store.Mongo == nil {
			log.Fatal("ensure-indexes needs store.driver=mongo", zap.String("driver", cfg.Store.Driver))
		}
		if err := store.Mongo.EnsureIndexes(ctx); err != nil {
			log.Fatal("ensure indexes", zap.Error(err))
		}
		log.Info("indexes ensured", zap.String("collection", cfg.Store.Mongo.Collection))
		return
	}

	// 审计只读，不需要锁
	svc := service.NewTimeSlotService(store, nil, log.Named("admin"))
	r := router.NewAdminEngine(log, svc, jwter, cfg)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
