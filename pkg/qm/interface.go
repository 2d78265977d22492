package qm

import (
	"context"
	"time"
)

// QmClient 定义了 qm 客户端的接口
// 用于抽象 Proxmox VE 的 VM 管理操作，便于测试和 mock
type QmClient interface {
	// Status 获取 VM 状态（如 "running", "stopped"）
	// VM 不存在时返回 ErrVMNotFound
	Status(ctx context.Context, vmid int) (string, error)
	// Config 获取 VM 配置（qm config 输出的 key/value）
	Config(ctx context.Context, vmid int) (map[string]string, error)
	// IsTemplate 判断 VMID 是否是模板
	IsTemplate(ctx context.Context, vmid int) (bool, error)
	// Create 创建新 VM
	Create(ctx context.Context, vmid int, opts *CreateOptions) error
	// Set 修改 VM 配置
	Set(ctx context.Context, vmid int, options ...Option) error
	// ImportDisk 将磁盘镜像导入存储池，返回导入后的卷 ID
	ImportDisk(ctx context.Context, vmid int, imagePath, storage string) (string, error)
	// Resize 调整 VM 磁盘大小
	Resize(ctx context.Context, vmid int, disk, size string) error
	// Template 将 VM 转换为模板
	Template(ctx context.Context, vmid int) error
	// Stop 停止 VM
	Stop(ctx context.Context, vmid int) error
	// Destroy 销毁 VM 及其磁盘
	Destroy(ctx context.Context, vmid int, purge bool) error
	// SetTimeout 设置命令超时时间
	SetTimeout(timeout time.Duration)
}
