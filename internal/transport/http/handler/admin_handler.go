package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-scheduler/internal/core/auth"
	"interview-scheduler/internal/domain"
	httpez "interview-scheduler/internal/transport/http/ez"
)

type OverlapAuditor interface {
	Overlaps(ctx context.Context, hrID string) ([]domain.OverlapPair, error)
}

type AdminHandler struct {
	audit OverlapAuditor
	jwter *auth.JWTer
}

func NewAdminHandler(audit OverlapAuditor, jwter *auth.JWTer) *AdminHandler {
	return &AdminHandler{audit: audit, jwter: jwter}
}

type overlapsOut struct {
	HRID     string               `json:"hr_id"`
	Total    int                  `json:"total"`
	Overlaps []domain.OverlapPair `json:"overlaps"`
}

type tokenReq struct {
	HRID string `json:"hr_id" binding:"required"`
	Role string `json:"role" binding:"omitempty,oneof=hr admin"`
}

type tokenOut struct {
	Token string `json:"token"`
}

// Mount 管理端接口，分组已走 AuthJWT("admin")
func (h *AdminHandler) Mount(g gin.IRoutes) {
	ez := httpez.New(g)

	// --- GET /admin/v1/owners/:hr_id/overlaps  历史重叠数据审计 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, overlapsOut]{
		Method: http.MethodGet,
		Path:   "/owners/:hr_id/overlaps",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (overlapsOut, error) {
			hrID := c.Param("hr_id")
			pairs, err := h.audit.Overlaps(c.Request.Context(), hrID)
			if err != nil {
				return overlapsOut{}, err
			}
			return overlapsOut{HRID: hrID, Total: len(pairs), Overlaps: pairs}, nil
		},
	})

	// --- POST /admin/v1/tokens  给 hr 签发 token ---
	httpez.RegisterAction(ez, httpez.Action[tokenReq, tokenOut]{
		Method: http.MethodPost,
		Path:   "/tokens",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *tokenReq) (tokenOut, error) {
			hrID := strings.TrimSpace(in.HRID)
			if hrID == "" {
				return tokenOut{}, httpez.BadRequest("hr_id: is required")
			}
			role := in.Role
			if role == "" {
				role = auth.RoleHR
			}
			tok, err := h.jwter.Issue(hrID, role)
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok}, nil
		},
	})
}
