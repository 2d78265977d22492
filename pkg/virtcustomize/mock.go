package virtcustomize

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 virt-customize 客户端的 mock 实现
type MockClient struct {
	mock.Mock
}

// 确保 MockClient 实现了 VirtCustomizeClient 接口
var _ VirtCustomizeClient = (*MockClient)(nil)

// NewMockClient 创建新的 MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// InstallPackages 在镜像内安装软件包
func (m *MockClient) InstallPackages(ctx context.Context, diskPath string, packages []string) error {
	args := m.Called(ctx, diskPath, packages)
	return args.Error(0)
}

// RunCommands 在镜像内执行命令
func (m *MockClient) RunCommands(ctx context.Context, diskPath string, commands []string) error {
	args := m.Called(ctx, diskPath, commands)
	return args.Error(0)
}

// SetTimezone 设置镜像的时区
func (m *MockClient) SetTimezone(ctx context.Context, diskPath, timezone string) error {
	args := m.Called(ctx, diskPath, timezone)
	return args.Error(0)
}

// ValidateDiskPath 验证磁盘路径是否有效
func (m *MockClient) ValidateDiskPath(diskPath string) error {
	args := m.Called(diskPath)
	return args.Error(0)
}

// SetTimeout 设置命令超时时间
func (m *MockClient) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}
