package pterodactyl

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 ApplicationClient 的 mock 实现
// 用于测试，不需要真实的 Pterodactyl 面板
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建新的 MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ ApplicationClient = (*MockClient)(nil)

// FindUserByExternalID 实现 ApplicationClient 接口
func (m *MockClient) FindUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// CreateUser 实现 ApplicationClient 接口
func (m *MockClient) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// EnsureUserForExternalID 实现 ApplicationClient 接口
func (m *MockClient) EnsureUserForExternalID(ctx context.Context, externalID, email string) (*User, error) {
	args := m.Called(ctx, externalID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// CreateServer 实现 ApplicationClient 接口
func (m *MockClient) CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Server), args.Error(1)
}
