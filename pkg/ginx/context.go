package ginx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader 请求 ID 的 HTTP 头
const RequestIDHeader = "X-Request-ID"

// requestIDKey 在 gin.Context 中保存请求 ID 的 key
const requestIDKey = "ginx.request_id"

// RequestID 为每个请求分配请求 ID
// 已经携带 X-Request-ID 的请求沿用调用方的值；
// 同时把带 request_id 字段的 logger 挂到请求的 context 上，供 zerolog.Ctx 使用
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)

		reqCtx := ctx.Request.Context()
		logger := zerolog.Ctx(reqCtx).With().Str("request_id", id).Logger()
		ctx.Request = ctx.Request.WithContext(logger.WithContext(reqCtx))

		ctx.Next()
	}
}

// GetRequestID 获取当前请求的 ID，没有经过 RequestID 中间件时返回空字符串
func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(requestIDKey)
}
