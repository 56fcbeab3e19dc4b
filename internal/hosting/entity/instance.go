package entity

import "net/http"

// InstanceStatus 实例状态
type InstanceStatus string

const (
	InstanceStatusProvisioning InstanceStatus = "PROVISIONING" // 已在面板创建，等待就绪
	InstanceStatusActive       InstanceStatus = "ACTIVE"       // 运行中
	InstanceStatusError        InstanceStatus = "ERROR"        // 安装或运行失败
)

// ResourceSpec 实例资源规格
type ResourceSpec struct {
	MemoryMB   int `json:"memoryMb" binding:"gte=512"`  // 内存（MB）
	DiskMB     int `json:"diskMb" binding:"gte=1024"`   // 磁盘（MB）
	CPUPercent int `json:"cpuPercent" binding:"gte=10"` // CPU 百分比
}

// Instance 游戏服实例
type Instance struct {
	ID               string         `json:"id"`               // 实例 ID: srv-{id}
	OwnerID          string         `json:"ownerId"`          // 所属用户 ID
	RemoteAccountID  int64          `json:"remoteAccountId"`  // 面板用户 ID
	RemoteInstanceID int64          `json:"remoteInstanceId"` // 面板服务器 ID
	RemoteIdentifier string         `json:"remoteIdentifier"` // 面板服务器短标识
	Name             string         `json:"name"`             // 实例名称
	Kind             string         `json:"kind"`             // 游戏类型
	ResourceSpec     ResourceSpec   `json:"resourceSpec"`     // 资源规格
	Status           InstanceStatus `json:"status"`           // PROVISIONING, ACTIVE, ERROR
	CreatedAt        string         `json:"createdAt"`        // 创建时间
	UpdatedAt        string         `json:"updatedAt"`        // 更新时间
}

// RemoteInstanceRef 面板服务器引用
type RemoteInstanceRef struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
}

// OrderServerRequest 下单请求
// 匿名下单必须携带 credential，已认证的调用方可以不传
type OrderServerRequest struct {
	Email        string       `json:"email" binding:"required,email"`
	Credential   string       `json:"credential" binding:"omitempty,min=6"` // 新用户的密码，或已有用户的密码
	Name         string       `json:"name" binding:"required,min=3"`
	Kind         string       `json:"kind" binding:"required,min=2"` // 游戏类型，例如 Minecraft
	ResourceSpec ResourceSpec `json:"resourceSpec"`
}

// OrderServerResponse 下单响应
type OrderServerResponse struct {
	User              *UserSummary       `json:"user"`
	Instance          *Instance          `json:"instance"`
	RemoteInstanceRef *RemoteInstanceRef `json:"remoteInstanceRef"`
}

// StatusCode 实现 ginx.StatusCoder
func (*OrderServerResponse) StatusCode() int { return http.StatusCreated }

// ListInstancesResponse 实例列表响应，按创建时间倒序
type ListInstancesResponse struct {
	Instances []*Instance `json:"instances"`
}

// UpdateInstanceStatusRequest 更新实例状态请求
type UpdateInstanceStatusRequest struct {
	InstanceID string         `json:"instanceID" binding:"required"`
	Status     InstanceStatus `json:"status" binding:"required,oneof=PROVISIONING ACTIVE ERROR"`
}

// UpdateInstanceStatusResponse 更新实例状态响应
type UpdateInstanceStatusResponse struct {
	Instance *Instance `json:"instance"`
}
