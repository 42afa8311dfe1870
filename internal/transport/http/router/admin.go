package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-scheduler/internal/core/auth"
	"interview-scheduler/internal/core/config"
	"interview-scheduler/internal/core/server"
	"interview-scheduler/internal/transport/http/handler"
	mdw "interview-scheduler/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, audit handler.OverlapAuditor, jwter *auth.JWTer, cfg *config.Config) *gin.Engine {
	r := server.NewRouter(l, nil)
	r.Use(protection(l, cfg.Limits)...)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))
	handler.NewAdminHandler(audit, jwter).Mount(admin)

	return r
}
