package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-scheduler/internal/core/auth"
	resp "interview-scheduler/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyOwner  = "owner"
	KeyRole   = "role"
)

func bearer(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	return tok, tok != ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyOwner, claims.UID)
	c.Set(KeyRole, claims.Role)
}

// Identity 可选身份：带 token 时 uid 即 hr_id；required 时无 token 直接 401
func Identity(j *auth.JWTer, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			if required {
				resp.Abort(c, http.StatusUnauthorized, "missing token")
				return
			}
			c.Next()
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// AuthJWT 强制登录，requireRole 非空时校验角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, http.StatusForbidden, resp.MsgForbidden)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// Owner returns the authenticated hr_id, or "" for anonymous requests.
func Owner(c *gin.Context) string { return c.GetString(KeyOwner) }
