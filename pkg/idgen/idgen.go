package idgen

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator 递增 ID 生成器
// 使用 Sonyflake 算法生成全局唯一且递增的 ID
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	settings := sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	sf := sonyflake.NewSonyflake(settings)
	if sf == nil {
		// 没有私有 IPv4 地址时（容器、CI）无法推导机器 ID，退回到进程号
		settings.MachineID = func() (uint16, error) {
			return uint16(os.Getpid()), nil
		}
		sf = sonyflake.NewSonyflake(settings)
	}

	return &Generator{
		sf: sf,
	}
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateUserID 生成用户 ID（格式：u-{递增 ID}）
func (g *Generator) GenerateUserID() (string, error) {
	return g.generateIDWithPrefix("u", "generate user ID")
}

// GenerateInstanceID 生成游戏服实例 ID（格式：srv-{递增 ID}）
func (g *Generator) GenerateInstanceID() (string, error) {
	return g.generateIDWithPrefix("srv", "generate instance ID")
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// GenerateUserID 使用默认生成器生成用户 ID
func GenerateUserID() (string, error) {
	return DefaultGenerator().GenerateUserID()
}

// GenerateInstanceID 使用默认生成器生成实例 ID
func GenerateInstanceID() (string, error) {
	return DefaultGenerator().GenerateInstanceID()
}

// GenerateID 使用默认生成器生成通用递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
