package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"interview-scheduler/internal/domain"
)

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func engine(err error, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r), Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: status,
		Handler: func(_ *gin.Context, in *echoIn) (gin.H, error) {
			if err != nil {
				return nil, err
			}
			return gin.H{"name": in.Name}, nil
		},
	})
	return r
}

func do(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAction(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		body     string
		wantCode int
		wantBody string
	}{
		{"ok", nil, http.StatusCreated, `{"name":"a"}`, http.StatusCreated, `{"name":"a"}`},
		{"no content", nil, http.StatusNoContent, `{"name":"a"}`, http.StatusNoContent, ``},
		{"bind error", nil, 0, `{}`, http.StatusBadRequest, ``},
		{"conflict", domain.ErrConflict, 0, `{"name":"a"}`, http.StatusBadRequest, `{"error":"Time slot conflicts with an existing slot"}`},
		{"not found", domain.ErrNotFound, 0, `{"name":"a"}`, http.StatusNotFound, `{"error":"Time slot not found"}`},
		{"aerr", Forbidden("nope"), 0, `{"name":"a"}`, http.StatusForbidden, `{"error":"nope"}`},
		{"unknown", errors.New("db down"), 0, `{"name":"a"}`, http.StatusInternalServerError, `{"error":"db down"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(engine(tc.err, tc.status), tc.body)
			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			} else if tc.wantCode == http.StatusNoContent {
				assert.Empty(t, w.Body.String())
			}
		})
	}
}
