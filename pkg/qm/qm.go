package qm

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrVMNotFound 表示 VMID 在宿主机上不存在
var ErrVMNotFound = fmt.Errorf("vm does not exist")

// Option qm set 的单个配置项（如 --scsi0 local-lvm:vm-9000-disk-0）
// 使用切片而不是 map，保证传给 qm 的参数顺序稳定
type Option struct {
	Name  string
	Value string
}

// CreateOptions qm create 的配置
type CreateOptions struct {
	Name     string // VM 名称
	MemoryMB int    // 内存（MB）
	Cores    int    // CPU 核心数
	CPUType  string // CPU 类型（如 "host"）
	Bridge   string // 网桥（如 "vmbr0"）
	OSType   string // 客户机系统类型（如 "l26"）
	SCSIHw   string // SCSI 控制器（如 "virtio-scsi-pci"）
	Agent    bool   // 启用 QEMU Guest Agent
	Tags     string // 标签，分号分隔
}

// Client qm 命令行客户端
type Client struct {
	qmPath  string
	timeout time.Duration
}

// 确保 Client 实现了 QmClient 接口
var _ QmClient = (*Client)(nil)

// NewClient 创建 qm 客户端
func NewClient() (*Client, error) {
	// 查找 qm 命令路径
	path, err := exec.LookPath("qm")
	if err != nil {
		return nil, fmt.Errorf("qm command not found: %w", err)
	}

	return &Client{
		qmPath:  path,
		timeout: 10 * time.Minute, // 默认超时 10 分钟，importdisk 可能较慢
	}, nil
}

// NewClientWithPath 使用指定的路径创建客户端
func NewClientWithPath(path string) *Client {
	return &Client{
		qmPath:  path,
		timeout: 10 * time.Minute,
	}
}

// SetTimeout 设置命令超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// run 执行一条 qm 子命令并返回合并输出
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, c.qmPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("qm %s failed: %w, output: %s", args[0], err, string(output))
	}
	return string(output), nil
}

// Status 获取 VM 状态
// 成功时返回 "running" / "stopped" 等状态字符串
// VM 不存在时返回 ErrVMNotFound
func (c *Client) Status(ctx context.Context, vmid int) (string, error) {
	output, err := c.run(ctx, "status", strconv.Itoa(vmid))
	if err != nil {
		// qm status 对不存在的 VMID 输出类似：
		// Configuration file 'nodes/pve/qemu-server/9000.conf' does not exist
		if strings.Contains(output, "does not exist") {
			return "", fmt.Errorf("vmid %d: %w", vmid, ErrVMNotFound)
		}
		return "", err
	}

	// 输出格式：status: running
	return parseStatus(output), nil
}

// parseStatus 从 qm status 输出中解析状态字段
func parseStatus(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "status:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "status:"))
		}
	}
	return ""
}

// Config 获取 VM 配置
// 返回 qm config 输出解析后的 key/value
func (c *Client) Config(ctx context.Context, vmid int) (map[string]string, error) {
	output, err := c.run(ctx, "config", strconv.Itoa(vmid))
	if err != nil {
		if strings.Contains(output, "does not exist") {
			return nil, fmt.Errorf("vmid %d: %w", vmid, ErrVMNotFound)
		}
		return nil, err
	}

	return parseConfig(output), nil
}

// parseConfig 解析 qm config 的 "key: value" 输出
func parseConfig(output string) map[string]string {
	cfg := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		cfg[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return cfg
}

// IsTemplate 判断 VMID 是否是模板
// VM 不存在时返回 ErrVMNotFound
func (c *Client) IsTemplate(ctx context.Context, vmid int) (bool, error) {
	cfg, err := c.Config(ctx, vmid)
	if err != nil {
		return false, err
	}
	return cfg["template"] == "1", nil
}

// Create 创建新 VM
func (c *Client) Create(ctx context.Context, vmid int, opts *CreateOptions) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Int("vmid", vmid).
		Str("name", opts.Name).
		Msg("Creating VM")

	args := buildCreateArgs(vmid, opts)
	if _, err := c.run(ctx, args...); err != nil {
		logger.Error().Err(err).Int("vmid", vmid).Msg("Failed to create VM")
		return err
	}

	return nil
}

// buildCreateArgs 构建 qm create 的参数列表
func buildCreateArgs(vmid int, opts *CreateOptions) []string {
	args := []string{"create", strconv.Itoa(vmid)}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.MemoryMB > 0 {
		args = append(args, "--memory", strconv.Itoa(opts.MemoryMB))
	}
	if opts.Cores > 0 {
		args = append(args, "--cores", strconv.Itoa(opts.Cores))
	}
	if opts.CPUType != "" {
		args = append(args, "--cpu", opts.CPUType)
	}
	if opts.Bridge != "" {
		args = append(args, "--net0", fmt.Sprintf("virtio,bridge=%s", opts.Bridge))
	}
	if opts.OSType != "" {
		args = append(args, "--ostype", opts.OSType)
	}
	if opts.SCSIHw != "" {
		args = append(args, "--scsihw", opts.SCSIHw)
	}
	if opts.Agent {
		args = append(args, "--agent", "enabled=1")
	}
	if opts.Tags != "" {
		args = append(args, "--tags", opts.Tags)
	}

	return args
}

// Set 修改 VM 配置
func (c *Client) Set(ctx context.Context, vmid int, options ...Option) error {
	if len(options) == 0 {
		return fmt.Errorf("no options specified")
	}

	args := []string{"set", strconv.Itoa(vmid)}
	for _, opt := range options {
		args = append(args, "--"+opt.Name, opt.Value)
	}

	_, err := c.run(ctx, args...)
	return err
}

// importedDiskPattern 匹配 qm importdisk 输出中的卷 ID：
// Successfully imported disk as 'unused0:local-lvm:vm-9000-disk-0'
var importedDiskPattern = regexp.MustCompile(`unused\d+:([^']+)'`)

// ImportDisk 将磁盘镜像导入存储池
// 返回导入后的卷 ID（如 "local-lvm:vm-9000-disk-0"），用于后续挂载到 scsi0
func (c *Client) ImportDisk(ctx context.Context, vmid int, imagePath, storage string) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Int("vmid", vmid).
		Str("image", imagePath).
		Str("storage", storage).
		Msg("Importing disk image")

	output, err := c.run(ctx, "importdisk", strconv.Itoa(vmid), imagePath, storage)
	if err != nil {
		return "", err
	}

	if m := importedDiskPattern.FindStringSubmatch(output); m != nil {
		return m[1], nil
	}

	// 老版本的 qm 不回显卷 ID，按 Proxmox 的命名约定推导
	return fmt.Sprintf("%s:vm-%d-disk-0", storage, vmid), nil
}

// Resize 调整 VM 磁盘大小
// size 支持绝对值（"8G"）和增量（"+2G"）
func (c *Client) Resize(ctx context.Context, vmid int, disk, size string) error {
	_, err := c.run(ctx, "resize", strconv.Itoa(vmid), disk, size)
	return err
}

// Template 将 VM 转换为模板
func (c *Client) Template(ctx context.Context, vmid int) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Int("vmid", vmid).Msg("Converting VM to template")

	_, err := c.run(ctx, "template", strconv.Itoa(vmid))
	return err
}

// Stop 停止 VM
func (c *Client) Stop(ctx context.Context, vmid int) error {
	_, err := c.run(ctx, "stop", strconv.Itoa(vmid))
	return err
}

// Destroy 销毁 VM 及其磁盘
// purge 为 true 时同时清理备份任务和复制任务中的引用
func (c *Client) Destroy(ctx context.Context, vmid int, purge bool) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Int("vmid", vmid).Bool("purge", purge).Msg("Destroying VM")

	args := []string{"destroy", strconv.Itoa(vmid)}
	if purge {
		args = append(args, "--purge")
	}

	_, err := c.run(ctx, args...)
	return err
}
