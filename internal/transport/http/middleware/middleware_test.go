package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-scheduler/internal/core/auth"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/who", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": Owner(c), "role": c.GetString(KeyRole)})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	j := auth.NewJWTer("k", "test", 5)
	hrTok, err := j.Issue("hr-7", auth.RoleHR)
	require.NoError(t, err)

	optional := newEngine(Identity(j, false))
	w := get(optional, "/who", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owner":"","role":""}`, w.Body.String())

	w = get(optional, "/who", hrTok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owner":"hr-7","role":"hr"}`, w.Body.String())

	w = get(optional, "/who", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())

	required := newEngine(Identity(j, true))
	w = get(required, "/who", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = get(required, "/who", hrTok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthJWT_Role(t *testing.T) {
	j := auth.NewJWTer("k", "test", 5)
	hrTok, _ := j.Issue("hr-7", auth.RoleHR)
	adminTok, _ := j.Issue("root", auth.RoleAdmin)

	r := newEngine(AuthJWT(j, auth.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/who", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/who", hrTok).Code)
	assert.Equal(t, http.StatusOK, get(r, "/who", adminTok).Code)
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(0.0001, 2))
	assert.Equal(t, http.StatusOK, get(r, "/who", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/who", "").Code)
	w := get(r, "/who", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, w.Body.String())
}

func TestRateLimitPerIP(t *testing.T) {
	r := newEngine(RateLimitPerIP(0.0001, 1))
	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := get(r, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"timeout"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())
	w := get(r, "/who", "")
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(KeyRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(KeyRequestID, strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}
