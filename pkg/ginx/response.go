package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/pkg/apierror"
	"github.com/rs/zerolog"
)

// StatusCoder 由需要非 200 状态码的响应实现，例如创建资源返回 201
type StatusCoder interface {
	StatusCode() int
}

// renderResponse 渲染响应
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	if s, ok := response.(string); ok {
		ctx.String(http.StatusOK, s)
		return
	}

	status := http.StatusOK
	if coder, ok := response.(StatusCoder); ok {
		status = coder.StatusCode()
	}
	ctx.JSON(status, response)
}

// renderError 渲染错误响应
// *apierror.Error 使用自身的状态码，其他错误按 500 处理；RawError 只写日志，不返回给调用方
func renderError(ctx *gin.Context, err error) {
	apiErr := apierror.From(err)
	statusCode := apiErr.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	if statusCode >= http.StatusInternalServerError {
		zerolog.Ctx(ctx.Request.Context()).Error().
			Err(err).
			Str("code", apiErr.Code).
			Str("path", ctx.FullPath()).
			Msg("Request failed")
	}

	ctx.JSON(statusCode, apierror.NewErrorResponse(GetRequestID(ctx), apiErr))
}

// AbortWithError 渲染错误响应并终止后续 handler，供中间件使用
func AbortWithError(ctx *gin.Context, err error) {
	renderError(ctx, err)
	ctx.Abort()
}
