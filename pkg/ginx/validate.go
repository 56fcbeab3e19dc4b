package ginx

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jimyag/hosting/pkg/apierror"
)

func init() {
	// 字段名使用 json 标签，例如 resourceSpec.memoryMb
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate 按 binding 标签校验结构体，和请求绑定使用同一个校验器
// 供 HTTP 之外的调用方在产生副作用之前校验参数
func Validate(obj any) error {
	if v := reflect.ValueOf(obj); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return apierror.NewValidationError(apierror.FieldError{Field: "body", Message: "request body is required"})
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return bindError(err)
	}
	return nil
}

// validationError 把 validator.ValidationErrors 转换为字段级校验错误，顺序和结构体字段一致
func validationError(errs validator.ValidationErrors) *apierror.Error {
	fields := make([]apierror.FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, apierror.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	validationErr := apierror.NewValidationError(fields...)
	validationErr.RawError = errs
	return validationErr
}

// fieldPath 去掉 Namespace 开头的结构体名
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
