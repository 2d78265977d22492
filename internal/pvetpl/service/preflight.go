// Package service 提供业务逻辑层的服务实现
// 包括工具探测、镜像、存储、VMID、凭据和模板构建等服务
package service

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/rs/zerolog"
)

// RequiredTools 宿主机必须具备的管理命令
var RequiredTools = []string{"qm", "pvesm", "virt-customize"}

// Tools 环境检查解析出的命令绝对路径
// 客户端用这些路径执行命令，不再各自查 PATH
type Tools struct {
	Qm            string
	Pvesm         string
	VirtCustomize string
}

// PreflightService 运行前环境检查
type PreflightService struct {
	lookPath func(file string) (string, error)
}

// NewPreflightService 创建新的 Preflight Service
func NewPreflightService() *PreflightService {
	return &PreflightService{
		lookPath: exec.LookPath,
	}
}

// ResolveTools 检查所有必需命令是否在 PATH 中并返回它们的绝对路径
// 缺少任何一个都会立即失败
func (s *PreflightService) ResolveTools(ctx context.Context) (*Tools, error) {
	logger := zerolog.Ctx(ctx)

	paths := make(map[string]string, len(RequiredTools))
	for _, tool := range RequiredTools {
		path, err := s.lookPath(tool)
		if err != nil {
			logger.Error().
				Str("tool", tool).
				Msg("Required tool not found in PATH")
			return nil, opserror.WrapError(
				opserror.ErrMissingTool,
				fmt.Sprintf("command %q not found, is this a Proxmox VE node with libguestfs-tools installed?", tool),
				err,
			)
		}
		logger.Debug().
			Str("tool", tool).
			Str("path", path).
			Msg("Tool found")
		paths[tool] = path
	}

	logger.Info().
		Int("total", len(RequiredTools)).
		Msg("All required tools are available")
	return &Tools{
		Qm:            paths["qm"],
		Pvesm:         paths["pvesm"],
		VirtCustomize: paths["virt-customize"],
	}, nil
}
