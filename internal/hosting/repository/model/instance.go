package model

import "time"

// Instance 实例表
type Instance struct {
	ID               string    `gorm:"primaryKey;type:text;column:id" json:"id"`                                     // srv-{id}
	OwnerID          string    `gorm:"type:text;not null;index:idx_instances_owner_id;column:owner_id" json:"owner_id"` // 关联 users.id
	Owner            *User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	RemoteAccountID  int64     `gorm:"type:integer;not null;column:remote_account_id" json:"remote_account_id"`   // 面板用户 ID
	RemoteInstanceID int64     `gorm:"type:integer;not null;column:remote_instance_id" json:"remote_instance_id"` // 面板服务器 ID
	RemoteIdentifier string    `gorm:"type:text;column:remote_identifier" json:"remote_identifier"`               // 面板服务器短标识
	Name             string    `gorm:"type:text;not null;column:name" json:"name"`
	Kind             string    `gorm:"type:text;not null;column:kind" json:"kind"` // 游戏类型
	MemoryMB         int       `gorm:"type:integer;not null;column:memory_mb" json:"memory_mb"`
	DiskMB           int       `gorm:"type:integer;not null;column:disk_mb" json:"disk_mb"`
	CPUPercent       int       `gorm:"type:integer;not null;column:cpu_percent" json:"cpu_percent"`
	Status           string    `gorm:"type:text;not null;index:idx_instances_status;column:status" json:"status"` // PROVISIONING, ACTIVE, ERROR
	CreatedAt        time.Time `gorm:"type:datetime;not null;index:idx_instances_created_at;column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
}

// TableName 指定表名
func (Instance) TableName() string {
	return "instances"
}
