// Package service 提供业务逻辑层的服务实现
package service

import (
	"time"

	"github.com/jimyag/hosting/internal/hosting/entity"
	"github.com/jimyag/hosting/internal/hosting/repository/model"
	"github.com/jinzhu/copier"
)

// userModelToEntity 将 model.User 转换为 entity.User（不包含密码哈希）
func userModelToEntity(m *model.User) (*entity.User, error) {
	e := &entity.User{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)

	return e, nil
}

// userSummary 响应中返回的用户摘要
func userSummary(m *model.User) *entity.UserSummary {
	return &entity.UserSummary{
		ID:    m.ID,
		Email: m.Email,
	}
}

// instanceEntityToModel 将 entity.Instance 转换为 model.Instance
func instanceEntityToModel(e *entity.Instance) (*model.Instance, error) {
	m := &model.Instance{}
	if err := copier.Copy(m, e); err != nil {
		return nil, err
	}

	// 资源规格在表中是平铺的列
	m.MemoryMB = e.ResourceSpec.MemoryMB
	m.DiskMB = e.ResourceSpec.DiskMB
	m.CPUPercent = e.ResourceSpec.CPUPercent
	m.Status = string(e.Status)

	// 处理时间字段
	if e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			m.CreatedAt = t
		} else {
			m.CreatedAt = time.Now()
		}
	} else {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = m.CreatedAt

	return m, nil
}

// instanceModelToEntity 将 model.Instance 转换为 entity.Instance
func instanceModelToEntity(m *model.Instance) (*entity.Instance, error) {
	e := &entity.Instance{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	e.ResourceSpec = entity.ResourceSpec{
		MemoryMB:   m.MemoryMB,
		DiskMB:     m.DiskMB,
		CPUPercent: m.CPUPercent,
	}
	e.Status = entity.InstanceStatus(m.Status)

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	e.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)

	return e, nil
}

// instanceModelsToEntities 批量转换，结果不会是 nil
func instanceModelsToEntities(models []*model.Instance) ([]*entity.Instance, error) {
	instances := make([]*entity.Instance, 0, len(models))
	for _, m := range models {
		e, err := instanceModelToEntity(m)
		if err != nil {
			return nil, err
		}
		instances = append(instances, e)
	}
	return instances, nil
}
