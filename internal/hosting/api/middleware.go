package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/rs/zerolog"
)

// callerKey 在 gin.Context 中保存调用方的 key
const callerKey = "api.caller"

// accessLog 记录访问日志和 HTTP 指标
func accessLog(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		m.RecordHTTPRequest(ctx.Request.Method, route, ctx.Writer.Status(), elapsed)

		zerolog.Ctx(ctx.Request.Context()).Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("elapsed", elapsed).
			Msg("Request handled")
	}
}

// cors 允许任意来源访问
func cors() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		header.Set("Access-Control-Allow-Headers", "Authorization,Content-Type,"+ginx.RequestIDHeader)
		header.Set("Access-Control-Expose-Headers", ginx.RequestIDHeader)

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// bearerToken 从 Authorization 头取出 bearer token
func bearerToken(ctx *gin.Context) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// authenticate 校验 bearer token
// required 为 false 时没有 Authorization 头的请求按匿名处理，但携带了无效 token 仍然拒绝
func authenticate(authService AuthServiceInterface, required bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			if required || ctx.GetHeader("Authorization") != "" {
				ginx.AbortWithError(ctx, apierror.ErrUnauthorized)
				return
			}
			ctx.Next()
			return
		}

		caller, err := authService.Authenticate(ctx, token)
		if err != nil {
			ginx.AbortWithError(ctx, err)
			return
		}
		ctx.Set(callerKey, caller)

		logger := zerolog.Ctx(ctx.Request.Context()).With().Str("user_id", caller.UserID).Logger()
		ctx.Request = ctx.Request.WithContext(logger.WithContext(ctx.Request.Context()))

		ctx.Next()
	}
}

// getCaller 获取当前请求的调用方，匿名请求返回 nil
func getCaller(ctx *gin.Context) *entity.Caller {
	v, ok := ctx.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*entity.Caller)
	return caller
}
