package apierror

import "net/http"

// 服务端返回给调用方的错误分类
// 远端控制面与本地存储的细节只保留在 RawError 中，不会出现在响应里
var (
	// ErrValidation 请求参数不合法，在任何副作用发生之前拒绝
	ErrValidation = &Error{
		Code:       "ValidationError",
		Message:    "Invalid payload",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrIdentityConflict 邮箱已被注册
	ErrIdentityConflict = &Error{
		Code:       "IdentityConflict",
		Message:    "User already exists",
		HTTPStatus: http.StatusConflict,
	}

	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = &Error{
		Code:       "InvalidCredentials",
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrUnauthorized 缺少或无效的 bearer token
	ErrUnauthorized = &Error{
		Code:       "Unauthorized",
		Message:    "Authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrForbidden 调用方无权访问该资源
	ErrForbidden = &Error{
		Code:       "Forbidden",
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	// ErrNotFound 资源不存在
	ErrNotFound = &Error{
		Code:       "NotFound",
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrRemoteUnavailable 远端控制面网络错误、超时或 5xx
	ErrRemoteUnavailable = &Error{
		Code:       "RemoteUnavailable",
		Message:    "Failed to provision server",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrRemoteRejected 远端控制面拒绝了请求（参数校验、配额等）
	ErrRemoteRejected = &Error{
		Code:       "RemoteRejected",
		Message:    "Failed to provision server",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrProvisioningFailed 远端实例创建失败，本地不会留下记录
	ErrProvisioningFailed = &Error{
		Code:       "ProvisioningFailed",
		Message:    "Failed to provision server",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrStorageUnavailable 本地存储不可用
	ErrStorageUnavailable = &Error{
		Code:       "StorageUnavailable",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrInternalError 未分类的内部错误
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)
