package qm

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 QmClient 的 mock 实现
// 用于测试，不需要真实的 qm 命令
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建新的 MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Status 实现 QmClient 接口
func (m *MockClient) Status(ctx context.Context, vmid int) (string, error) {
	args := m.Called(ctx, vmid)
	return args.String(0), args.Error(1)
}

// Config 实现 QmClient 接口
func (m *MockClient) Config(ctx context.Context, vmid int) (map[string]string, error) {
	args := m.Called(ctx, vmid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// IsTemplate 实现 QmClient 接口
func (m *MockClient) IsTemplate(ctx context.Context, vmid int) (bool, error) {
	args := m.Called(ctx, vmid)
	return args.Bool(0), args.Error(1)
}

// Create 实现 QmClient 接口
func (m *MockClient) Create(ctx context.Context, vmid int, opts *CreateOptions) error {
	args := m.Called(ctx, vmid, opts)
	return args.Error(0)
}

// Set 实现 QmClient 接口
func (m *MockClient) Set(ctx context.Context, vmid int, options ...Option) error {
	args := m.Called(ctx, vmid, options)
	return args.Error(0)
}

// ImportDisk 实现 QmClient 接口
func (m *MockClient) ImportDisk(ctx context.Context, vmid int, imagePath, storage string) (string, error) {
	args := m.Called(ctx, vmid, imagePath, storage)
	return args.String(0), args.Error(1)
}

// Resize 实现 QmClient 接口
func (m *MockClient) Resize(ctx context.Context, vmid int, disk, size string) error {
	args := m.Called(ctx, vmid, disk, size)
	return args.Error(0)
}

// Template 实现 QmClient 接口
func (m *MockClient) Template(ctx context.Context, vmid int) error {
	args := m.Called(ctx, vmid)
	return args.Error(0)
}

// Stop 实现 QmClient 接口
func (m *MockClient) Stop(ctx context.Context, vmid int) error {
	args := m.Called(ctx, vmid)
	return args.Error(0)
}

// Destroy 实现 QmClient 接口
func (m *MockClient) Destroy(ctx context.Context, vmid int, purge bool) error {
	args := m.Called(ctx, vmid, purge)
	return args.Error(0)
}

// SetTimeout 实现 QmClient 接口
func (m *MockClient) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}

// 确保 MockClient 实现了 QmClient 接口
var _ QmClient = (*MockClient)(nil)
