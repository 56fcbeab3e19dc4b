package pterodactyl

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable 面板不可达：网络错误、超时、429 或 5xx
	ErrUnavailable = errors.New("pterodactyl: control plane unavailable")
	// ErrRejected 面板拒绝了请求：参数校验失败、配额不足等 4xx
	ErrRejected = errors.New("pterodactyl: request rejected")
)

// APIError 面板返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Errors     []ErrorDetail
}

func (e *APIError) Error() string {
	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Detail != "" {
			details = append(details, fmt.Sprintf("%s: %s", d.Code, d.Detail))
		} else {
			details = append(details, d.Code)
		}
	}
	msg := fmt.Sprintf("pterodactyl: %s %s returned %d", e.Method, e.Path, e.StatusCode)
	if len(details) > 0 {
		msg += " (" + strings.Join(details, "; ") + ")"
	}
	return msg
}

// Unwrap 返回错误分类，errors.Is(err, ErrRejected) 之类的判断依赖这里
func (e *APIError) Unwrap() error {
	if isUnavailableStatus(e.StatusCode) {
		return ErrUnavailable
	}
	return ErrRejected
}

func isUnavailableStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// IsUnavailable 判断错误是否为面板不可达
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRejected 判断错误是否为面板拒绝请求
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
