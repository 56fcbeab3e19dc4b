package repository

import (
	"context"
	"time"

	"github.com/jimyag/hosting/internal/hosting/repository/model"
	"gorm.io/gorm/clause"
)

// InstanceRepository 实例仓库接口
type InstanceRepository interface {
	// Create 插入新实例，每次调用都会插入一行
	Create(ctx context.Context, instance *model.Instance) error
	// GetByID 按 ID 查找，不存在时返回 ErrNotFound
	GetByID(ctx context.Context, id string) (*model.Instance, error)
	// ListByOwner 列出用户的实例，按创建时间倒序；没有实例时返回空切片
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Instance, error)
	// UpdateStatus 更新实例状态，不存在时返回 ErrNotFound
	UpdateStatus(ctx context.Context, id, status string) (*model.Instance, error)
}

type instanceRepository struct {
	*Repository
}

// NewInstanceRepository 创建实例仓库
func NewInstanceRepository(repo *Repository) InstanceRepository {
	return &instanceRepository{Repository: repo}
}

// Create 创建实例
func (r *instanceRepository) Create(ctx context.Context, instance *model.Instance) error {
	return translateError(r.WithContext(ctx).Omit(clause.Associations).Create(instance).Error)
}

// GetByID 根据 ID 获取实例
func (r *instanceRepository) GetByID(ctx context.Context, id string) (*model.Instance, error) {
	var instance model.Instance
	if err := r.WithContext(ctx).Where("id = ?", id).First(&instance).Error; err != nil {
		return nil, translateError(err)
	}
	return &instance, nil
}

// ListByOwner 列出用户的实例
func (r *instanceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Instance, error) {
	instances := make([]*model.Instance, 0)
	if err := r.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&instances).Error; err != nil {
		return nil, translateError(err)
	}
	return instances, nil
}

// UpdateStatus 更新实例状态
func (r *instanceRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Instance, error) {
	result := r.WithContext(ctx).
		Model(&model.Instance{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
