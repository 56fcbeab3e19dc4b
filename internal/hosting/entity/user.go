package entity

import "net/http"

// User 用户信息（不包含密码哈希）
type User struct {
	ID        string `json:"id"`                  // 用户 ID: u-{id}
	Email     string `json:"email"`               // 邮箱，全局唯一
	CreatedAt string `json:"createdAt,omitempty"` // 创建时间
}

// UserSummary 响应中返回的用户摘要
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Caller 经过认证的调用方
type Caller struct {
	UserID string
	Email  string
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
// 登录只检查必填，密码长度不在这里校验
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User  *UserSummary `json:"user"`
	Token string       `json:"token"` // bearer token
}

// RegisterResponse 注册响应，返回 201
type RegisterResponse struct {
	AuthResponse
}

// StatusCode 实现 ginx.StatusCoder
func (RegisterResponse) StatusCode() int { return http.StatusCreated }
