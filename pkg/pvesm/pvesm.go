package pvesm

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Pool 单个存储池的状态
// 字段来自 pvesm status 的各列，容量单位是 KiB
type Pool struct {
	Name        string
	Type        string
	Status      string
	TotalKB     uint64
	UsedKB      uint64
	AvailableKB uint64
	UsedPercent float64
}

// Active 判断存储池是否处于可用状态
func (p *Pool) Active() bool {
	return p.Status == "active"
}

// AvailableGB 返回剩余容量（GB）
func (p *Pool) AvailableGB() float64 {
	return float64(p.AvailableKB) / 1024 / 1024
}

// PvesmClient 定义了 pvesm 客户端的接口
// 用于抽象 Proxmox VE 的存储查询操作，便于测试和 mock
type PvesmClient interface {
	// Status 列出存储池状态
	// content 非空时只返回支持该内容类型的存储池（如 "images"）
	Status(ctx context.Context, content string) ([]Pool, error)
	// SetTimeout 设置命令超时时间
	SetTimeout(timeout time.Duration)
}

// Client pvesm 命令行客户端
type Client struct {
	pvesmPath string
	timeout   time.Duration
}

// 确保 Client 实现了 PvesmClient 接口
var _ PvesmClient = (*Client)(nil)

// NewClient 创建 pvesm 客户端
func NewClient() (*Client, error) {
	// 查找 pvesm 命令路径
	path, err := exec.LookPath("pvesm")
	if err != nil {
		return nil, fmt.Errorf("pvesm command not found: %w", err)
	}

	return &Client{
		pvesmPath: path,
		timeout:   time.Minute,
	}, nil
}

// NewClientWithPath 使用指定的路径创建客户端
func NewClientWithPath(path string) *Client {
	return &Client{
		pvesmPath: path,
		timeout:   time.Minute,
	}
}

// SetTimeout 设置命令超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Status 列出存储池状态
func (c *Client) Status(ctx context.Context, content string) ([]Pool, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"status"}
	if content != "" {
		args = append(args, "--content", content)
	}

	cmd := exec.CommandContext(cmdCtx, c.pvesmPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pvesm status failed: %w, output: %s", err, string(output))
	}

	return ParseStatusOutput(string(output))
}

// ParseStatusOutput 解析 pvesm status 的表格输出
//
// 输出格式（第一行是表头）：
//
//	Name             Type     Status           Total            Used       Available        %
//	local             dir     active        98497780        12345678        86152102   12.53%
//	local-lvm     lvmthin     active       166430720        12000000       154430720    7.21%
func ParseStatusOutput(output string) ([]Pool, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty pvesm status output")
	}

	var pools []Pool
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// 跳过表头
		if i == 0 && strings.HasPrefix(line, "Name") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 {
			return nil, fmt.Errorf("unexpected pvesm status line: %q", line)
		}

		pool := Pool{
			Name:   fields[0],
			Type:   fields[1],
			Status: fields[2],
		}

		var err error
		if pool.TotalKB, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
			return nil, fmt.Errorf("parse total for pool %s: %w", pool.Name, err)
		}
		if pool.UsedKB, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
			return nil, fmt.Errorf("parse used for pool %s: %w", pool.Name, err)
		}
		if pool.AvailableKB, err = strconv.ParseUint(fields[5], 10, 64); err != nil {
			return nil, fmt.Errorf("parse available for pool %s: %w", pool.Name, err)
		}
		if pool.UsedPercent, err = strconv.ParseFloat(strings.TrimSuffix(fields[6], "%"), 64); err != nil {
			return nil, fmt.Errorf("parse used percent for pool %s: %w", pool.Name, err)
		}

		pools = append(pools, pool)
	}

	return pools, nil
}
