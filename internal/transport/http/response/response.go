package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-scheduler/internal/domain"
)

// Body 错误响应体：{"error": "..."}
type Body struct {
	Error string `json:"error"`
}

func Error(msg string) Body { return Body{Error: msg} }

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(msg))
}

// FromDomain maps a domain error to its HTTP status and message. ok is false for unknown errors.
func FromDomain(err error) (status int, msg string, ok bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error(), true
	}
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			if m.msg == "" {
				return m.status, err.Error(), true
			}
			return m.status, m.msg, true
		}
	}
	return 0, "", false
}
