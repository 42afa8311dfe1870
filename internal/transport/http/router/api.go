package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"interview-scheduler/internal/core/auth"
	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/server"
	"interview-scheduler/internal/transport/http/handler"
	mdw "interview-scheduler/internal/transport/http/middleware"
	"interview-scheduler/internal/transport/http/ui"
)

type APIDeps struct {
	Slots handler.SlotService
	JWTer *auth.JWTer
	Cfg   *config.Config
}

func NewAPIEngine(l *zap.Logger, d APIDeps) (*gin.Engine, error) {
	r := server.NewRouter(l, d.Cfg.CORS.AllowOrigins)
	r.Use(protection(l, d.Cfg.Limits)...)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 页面
	if err := ui.NewHandler(d.Cfg.UI).Mount(r); err != nil {
		return nil, err
	}

	// 时间段接口（与原前端约定一致，挂在根路径）
	slots := r.Group("")
	slots.Use(mdw.Identity(d.JWTer, d.Cfg.JWT.Required))
	handler.NewTimeSlotHandler(d.Slots).Mount(slots)

	return r, nil
}

// protection 入口保护，API 与管理端共用；数值为 0 的限制不启用
func protection(l *zap.Logger, lim config.Limits) []gin.HandlerFunc {
	mws := []gin.HandlerFunc{mdw.RequestID()}
	if lim.RPS > 0 {
		mws = append(mws, mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		mws = append(mws, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}
	if lim.MaxConcurrent > 0 {
		mws = append(mws, mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		mws = append(mws, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		mws = append(mws, mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second))
	}
	return append(mws, mdw.Metrics(), mdw.AccessLog(l))
}
