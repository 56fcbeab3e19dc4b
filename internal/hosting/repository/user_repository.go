package repository

import (
	"context"

	"github.com/jimyag/hosting/internal/hosting/repository/model"
)

// UserRepository 用户仓库接口
type UserRepository interface {
	// Create 创建用户，邮箱已存在时返回 ErrAlreadyExists
	Create(ctx context.Context, user *model.User) error
	// GetByEmail 按邮箱查找，不存在时返回 ErrNotFound
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByID 按 ID 查找，不存在时返回 ErrNotFound
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userRepository struct {
	*Repository
}

// NewUserRepository 创建用户仓库
func NewUserRepository(repo *Repository) UserRepository {
	return &userRepository{Repository: repo}
}

// Create 创建用户
// 唯一索引是邮箱唯一性的最终保证，并发注册时只有一个会成功
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.WithContext(ctx).Create(user).Error)
}

// GetByEmail 按邮箱查找用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByID 按 ID 查找用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
