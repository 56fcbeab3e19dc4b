package pterodactyl

// User 面板用户
type User struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	UUID       string `json:"uuid"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// Server 面板服务器
type Server struct {
	ID          int64  `json:"id"`
	ExternalID  string `json:"external_id"`
	UUID        string `json:"uuid"`
	Identifier  string `json:"identifier"` // 短标识，面板 URL 中使用
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      int64  `json:"user"`
}

// CreateUserRequest 创建面板用户请求
type CreateUserRequest struct {
	Email      string
	Username   string
	FirstName  string
	LastName   string
	ExternalID string
}

// Limits 服务器资源限制
type Limits struct {
	MemoryMB   int // 内存（MB）
	DiskMB     int // 磁盘（MB）
	CPUPercent int // CPU 百分比，100 表示一个核心
}

// CreateServerRequest 创建服务器请求
type CreateServerRequest struct {
	Name        string
	Description string
	UserID      int64  // 面板用户 ID
	ExternalID  string // 本地实例 ID，便于之后与本地记录对账
	Limits      Limits
}

// ServerDefaults 创建服务器时使用的面板侧默认配置
type ServerDefaults struct {
	EggID        int               `yaml:"egg_id"`
	NestID       int               `yaml:"nest_id"`
	LocationID   int               `yaml:"location_id"`
	AllocationID int               `yaml:"allocation_id"`
	DockerImage  string            `yaml:"docker_image"`
	Startup      string            `yaml:"startup"`
	Environment  map[string]string `yaml:"environment"`
}

// ErrorDetail 面板返回的单条错误
type ErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// object 单个资源的响应包装
type object[T any] struct {
	Object     string `json:"object"`
	Attributes T      `json:"attributes"`
}

// list 列表响应包装
type list[T any] struct {
	Object string      `json:"object"`
	Data   []object[T] `json:"data"`
}

type createUserBody struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ExternalID string `json:"external_id"`
}

type limitsBody struct {
	Memory int `json:"memory"`
	Swap   int `json:"swap"`
	Disk   int `json:"disk"`
	IO     int `json:"io"`
	CPU    int `json:"cpu"`
}

type featureLimitsBody struct {
	Databases   int `json:"databases"`
	Allocations int `json:"allocations"`
	Backups     int `json:"backups"`
}

type allocationBody struct {
	Default int `json:"default"`
}

type deployBody struct {
	Locations   []int    `json:"locations"`
	DedicatedIP bool     `json:"dedicated_ip"`
	PortRange   []string `json:"port_range"`
}

type createServerBody struct {
	ExternalID        string            `json:"external_id,omitempty"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	User              int64             `json:"user"`
	Egg               int               `json:"egg"`
	Nest              int               `json:"nest"`
	DockerImage       string            `json:"docker_image,omitempty"`
	Startup           string            `json:"startup,omitempty"`
	Environment       map[string]string `json:"environment,omitempty"`
	Limits            limitsBody        `json:"limits"`
	FeatureLimits     featureLimitsBody `json:"feature_limits"`
	Allocation        allocationBody    `json:"allocation"`
	Deploy            deployBody        `json:"deploy"`
	StartOnCompletion bool              `json:"start_on_completion"`
	SkipScripts       bool              `json:"skip_scripts"`
}
