package pvesm

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 PvesmClient 的 mock 实现
// 用于测试，不需要真实的 pvesm 命令
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建新的 MockClient
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Status 实现 PvesmClient 接口
func (m *MockClient) Status(ctx context.Context, content string) ([]Pool, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Pool), args.Error(1)
}

// SetTimeout 实现 PvesmClient 接口
func (m *MockClient) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}

// 确保 MockClient 实现了 PvesmClient 接口
var _ PvesmClient = (*MockClient)(nil)
