// Package apierror 提供带错误码的错误类型，用于所有服务的统一错误处理
//
// 错误响应格式：
//
//	{
//	    "errors": [
//	        {
//	            "code": "ValidationError",
//	            "message": "Invalid payload",
//	            "fields": [
//	                {"field": "resourceSpec.memoryMb", "message": "must be at least 512"}
//	            ]
//	        }
//	    ],
//	    "requestID": "3f0c7d5e-8a0e-4a55-9b1e-0e8b7c3c2d11"
//	}
//
// 预定义的错误（按 Code 比较，可以直接用于 errors.Is）：
//
//   - ErrValidation: 参数校验失败 (400)
//   - ErrIdentityConflict: 邮箱已注册 (409)
//   - ErrInvalidCredentials: 登录凭据错误 (401)
//   - ErrUnauthorized: 未认证 (401)
//   - ErrForbidden: 无权访问 (403)
//   - ErrNotFound: 资源不存在 (404)
//   - ErrRemoteUnavailable: 远端控制面不可达 (500)
//   - ErrRemoteRejected: 远端控制面拒绝请求 (500)
//   - ErrProvisioningFailed: 远端实例创建失败 (500)
//   - ErrStorageUnavailable: 本地存储不可用 (500)
//   - ErrInternalError: 内部错误 (500)
//
// 使用示例：
//
//	// 包装底层错误，保留错误码和状态码
//	err := apierror.WrapError(apierror.ErrStorageUnavailable, "Failed to save instance", dbErr)
//
//	// 字段级校验错误
//	err := apierror.NewValidationError(apierror.FieldError{Field: "email", Message: "must be a valid email"})
//
//	// 判断错误类型
//	if errors.Is(err, apierror.ErrValidation) { ... }
package apierror
