package ginx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jimyag/hosting/pkg/apierror"
)

// hasBody 判断请求是否携带 body
func hasBody(ctx *gin.Context) bool {
	switch ctx.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return ctx.Request.ContentLength > 0
}

// bindArgs 绑定请求参数到 args 结构体
// 有 body 的请求按 JSON 解析，其余请求从 URI 和 Query 参数绑定
func bindArgs(ctx *gin.Context, args any) error {
	if hasBody(ctx) {
		if err := ctx.ShouldBindJSON(args); err != nil {
			return bindError(err)
		}
		return nil
	}

	if len(ctx.Params) > 0 {
		if err := ctx.ShouldBindUri(args); err != nil {
			return bindError(err)
		}
	}
	if err := ctx.ShouldBindQuery(args); err != nil {
		return bindError(err)
	}
	return nil
}

// Bind 绑定并按 binding 标签校验请求参数，供需要自己处理绑定失败的 handler 使用
func Bind(ctx *gin.Context, args any) error {
	return bindArgs(ctx, args)
}

// bindError 把解码和校验错误转换为带字段明细的校验错误
func bindError(err error) error {
	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	if errors.As(err, &validationErrs) {
		return validationError(validationErrs)
	}

	field := apierror.FieldError{Field: "body", Message: err.Error()}
	switch {
	case errors.As(err, &typeErr):
		field = apierror.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
		}
	case errors.As(err, &syntaxErr):
		field.Message = "malformed JSON"
	case errors.Is(err, io.EOF):
		field.Message = "request body is required"
	}

	validationErr := apierror.NewValidationError(field)
	validationErr.RawError = err
	return validationErr
}
