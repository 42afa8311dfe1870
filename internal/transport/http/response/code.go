package response

import (
	"net/http"

	"interview-scheduler/internal/domain"
)

// 对外错误文案（UI 直接 alert 这些字符串）
const (
	MsgConflict     = "Time slot conflicts with an existing slot"
	MsgNotFound     = "Time slot not found"
	MsgUnauthorized = "unauthorized"
	MsgForbidden    = "forbidden"
	MsgTimeout      = "timeout"
	MsgTooMany      = "too many requests"
	MsgBusy         = "server busy"
	MsgBodyTooLarge = "request body too large"
)

// domainStatus 领域错误 → HTTP 状态 + 文案
var domainStatus = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrConflict, http.StatusBadRequest, MsgConflict},
	{domain.ErrNotFound, http.StatusNotFound, MsgNotFound},
	{domain.ErrDuplicateID, http.StatusInternalServerError, ""},
}
