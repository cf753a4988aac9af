// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且递增的 ID。
// Sonyflake 是 Snowflake 算法的改进版本，生成的 ID 具有以下特性：
//   - 全局唯一
//   - 时间有序（递增）
//   - 64 位整数
//   - 分布式友好
//
// 属性目录与实体属性关联都使用数字 ID 作为主键，
// 由服务层在创建时生成，而不是依赖数据库自增。
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
	// 使用默认设置创建 Sonyflake
	// 如果需要自定义机器 ID，可以通过 Settings 配置
	return newGenerator(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // 起始时间
	})
}

func newGenerator(settings sonyflake.Settings) *Generator {
	sf := sonyflake.NewSonyflake(settings)
	if sf == nil {
		// 没有私有 IPv4 地址时默认的机器 ID 推导会失败，
		// 退回到由进程 ID 派生的机器 ID，保证生成器总是可用
		settings.MachineID = func() (uint16, error) {
			return uint16(os.Getpid()), nil
		}
		settings.CheckMachineID = nil
		sf = sonyflake.NewSonyflake(settings)
	}

	return &Generator{
		sf: sf,
	}
}

// GenerateAttributeID 生成属性定义 ID
func (g *Generator) GenerateAttributeID() (uint64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, fmt.Errorf("generate attribute ID: %w", err)
	}
	return id, nil
}

// GenerateLinkID 生成实体属性关联 ID
func (g *Generator) GenerateLinkID() (uint64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, fmt.Errorf("generate link ID: %w", err)
	}
	return id, nil
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// 包级别的便捷函数，使用默认生成器

// GenerateAttributeID 使用默认生成器生成属性定义 ID
func GenerateAttributeID() (uint64, error) {
	return DefaultGenerator().GenerateAttributeID()
}

// GenerateLinkID 使用默认生成器生成实体属性关联 ID
func GenerateLinkID() (uint64, error) {
	return DefaultGenerator().GenerateLinkID()
}

// GenerateID 使用默认生成器生成通用递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
