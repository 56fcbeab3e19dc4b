package pterodactyl

import "context"

// ApplicationClient 定义 Pterodactyl Application API 客户端接口
// 用于抽象远端面板操作，便于测试和 mock
type ApplicationClient interface {
	// FindUserByExternalID 按 external_id 查找面板用户，不存在时返回 nil, nil
	FindUserByExternalID(ctx context.Context, externalID string) (*User, error)
	// CreateUser 创建面板用户
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	// EnsureUserForExternalID 查找面板用户，不存在时用邮箱前缀作为用户名创建
	EnsureUserForExternalID(ctx context.Context, externalID, email string) (*User, error)
	// CreateServer 创建服务器，每次调用都会创建新的服务器
	CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error)
}

var _ ApplicationClient = (*Client)(nil)
