package idgen

import (
	"fmt"
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

// initDefaultGenerator 初始化默认生成器
func initDefaultGenerator() {
	defaultGenerator = New()
}

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(initDefaultGenerator)
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	// 使用默认设置创建 Sonyflake
	// 如果需要自定义机器 ID，可以通过 Settings 配置
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // 起始时间
	})
	if sf == nil {
		// 如果创建失败，使用当前时间作为起始时间
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
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

// GenerateRunID 生成本次运行的 ID（格式：run-{递增 ID}）
// 每次 CLI 调用生成一个，贯穿日志字段和目录记录
func (g *Generator) GenerateRunID() (string, error) {
	return g.generateIDWithPrefix("run", "generate run ID")
}

// GenerateImageID 生成镜像记录 ID（格式：img-{递增 ID}）
func (g *Generator) GenerateImageID() (string, error) {
	return g.generateIDWithPrefix("img", "generate image ID")
}

// GenerateTemplateID 生成模板记录 ID（格式：tpl-{递增 ID}）
func (g *Generator) GenerateTemplateID() (string, error) {
	return g.generateIDWithPrefix("tpl", "generate template ID")
}

// GenerateID 生成原始的递增 ID（不带前缀）
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// GenerateRunID 使用默认生成器生成运行 ID
func GenerateRunID() (string, error) {
	return DefaultGenerator().GenerateRunID()
}

// GenerateImageID 使用默认生成器生成镜像记录 ID
func GenerateImageID() (string, error) {
	return DefaultGenerator().GenerateImageID()
}

// GenerateTemplateID 使用默认生成器生成模板记录 ID
func GenerateTemplateID() (string, error) {
	return DefaultGenerator().GenerateTemplateID()
}

// GenerateID 使用默认生成器生成原始的递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
