package virtcustomize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// VirtCustomizeClient 定义 virt-customize 客户端接口
type VirtCustomizeClient interface {
	InstallPackages(ctx context.Context, diskPath string, packages []string) error
	RunCommands(ctx context.Context, diskPath string, commands []string) error
	SetTimezone(ctx context.Context, diskPath, timezone string) error
	ValidateDiskPath(diskPath string) error
	SetTimeout(timeout time.Duration)
}

// Client virt-customize 客户端
type Client struct {
	virtCustomizePath string // virt-customize 命令路径
	timeout           time.Duration
}

// 确保 Client 实现了 VirtCustomizeClient 接口
var _ VirtCustomizeClient = (*Client)(nil)

// NewClient 创建 virt-customize 客户端
func NewClient() (*Client, error) {
	// 查找 virt-customize 命令路径
	path, err := exec.LookPath("virt-customize")
	if err != nil {
		return nil, fmt.Errorf("virt-customize command not found: %w", err)
	}

	return &Client{
		virtCustomizePath: path,
		timeout:           10 * time.Minute, // 安装软件包需要在 appliance 里跑包管理器，给足时间
	}, nil
}

// NewClientWithPath 使用指定的路径创建客户端
func NewClientWithPath(path string) *Client {
	return &Client{
		virtCustomizePath: path,
		timeout:           10 * time.Minute,
	}
}

// run 对镜像执行一次 virt-customize
func (c *Client) run(ctx context.Context, diskPath string, extraArgs ...string) error {
	// 验证磁盘文件存在
	if _, err := os.Stat(diskPath); os.IsNotExist(err) {
		return fmt.Errorf("disk file not found: %s", diskPath)
	}

	// 创建带超时的 context
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append([]string{"-a", diskPath}, extraArgs...)
	cmd := exec.CommandContext(cmdCtx, c.virtCustomizePath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("virt-customize failed: %w, output: %s", err, string(output))
	}

	return nil
}

// InstallPackages 在镜像内安装软件包（如 qemu-guest-agent）
func (c *Client) InstallPackages(ctx context.Context, diskPath string, packages []string) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("disk_path", diskPath).
		Strs("packages", packages).
		Msg("Installing packages into image")

	if len(packages) == 0 {
		return fmt.Errorf("no packages specified")
	}

	err := c.run(ctx, diskPath, "--install", strings.Join(packages, ","))
	if err != nil {
		logger.Error().
			Err(err).
			Str("disk_path", diskPath).
			Msg("Failed to install packages")
		return err
	}

	logger.Info().
		Strs("packages", packages).
		Msg("Packages installed successfully")

	return nil
}

// RunCommands 在镜像内执行命令
func (c *Client) RunCommands(ctx context.Context, diskPath string, commands []string) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("disk_path", diskPath).
		Int("command_count", len(commands)).
		Msg("Running commands in image")

	if len(commands) == 0 {
		return fmt.Errorf("no commands specified")
	}

	var args []string
	for _, command := range commands {
		args = append(args, "--run-command", command)
	}

	err := c.run(ctx, diskPath, args...)
	if err != nil {
		logger.Error().
			Err(err).
			Str("disk_path", diskPath).
			Msg("Failed to run commands")
		return err
	}

	return nil
}

// SetTimezone 设置镜像的时区
func (c *Client) SetTimezone(ctx context.Context, diskPath, timezone string) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("disk_path", diskPath).
		Str("timezone", timezone).
		Msg("Setting image timezone")

	if timezone == "" {
		return fmt.Errorf("no timezone specified")
	}

	return c.run(ctx, diskPath, "--timezone", timezone)
}

// ValidateDiskPath 验证磁盘路径是否有效
func (c *Client) ValidateDiskPath(diskPath string) error {
	// 检查文件是否存在
	if _, err := os.Stat(diskPath); os.IsNotExist(err) {
		return fmt.Errorf("disk file not found: %s", diskPath)
	}

	// 检查文件扩展名（云镜像是 .img 或 .qcow2）
	ext := strings.ToLower(filepath.Ext(diskPath))
	if ext != ".qcow2" && ext != ".img" {
		return fmt.Errorf("unsupported disk format: %s (only qcow2 and img are supported)", ext)
	}

	return nil
}

// SetTimeout 设置命令超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}
