package service

import (
	"context"
	"testing"

	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVMIDService_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("free VMID creates", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 9000).Return("", qm.ErrVMNotFound)

		s := NewVMIDService(mockQm, newTestPrompter(""))
		resolution, err := s.Resolve(ctx, 9000, false)
		require.NoError(t, err)
		assert.Equal(t, 9000, resolution.VMID)
		assert.Equal(t, ActionCreate, resolution.Action)
		mockQm.AssertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()

		s := NewVMIDService(qm.NewMockClient(), newTestPrompter(""))
		_, err := s.Resolve(ctx, 99, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, opserror.ErrInvalidVMID)
	})

	t.Run("existing template with assume yes reuses", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 9000).Return("stopped", nil)
		mockQm.On("IsTemplate", ctx, 9000).Return(true, nil)

		s := NewVMIDService(mockQm, newTestPrompter(""))
		resolution, err := s.Resolve(ctx, 9000, true)
		require.NoError(t, err)
		assert.Equal(t, ActionReuse, resolution.Action)
		mockQm.AssertExpectations(t)
	})

	t.Run("existing VM with assume yes recreates", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 9000).Return("running", nil)
		mockQm.On("IsTemplate", ctx, 9000).Return(false, nil)

		s := NewVMIDService(mockQm, newTestPrompter(""))
		resolution, err := s.Resolve(ctx, 9000, true)
		require.NoError(t, err)
		assert.Equal(t, ActionRecreate, resolution.Action)
		mockQm.AssertExpectations(t)
	})

	t.Run("template conflict menu keep", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 9000).Return("stopped", nil)
		mockQm.On("IsTemplate", ctx, 9000).Return(true, nil)

		s := NewVMIDService(mockQm, newTestPrompter("1\n"))
		resolution, err := s.Resolve(ctx, 9000, false)
		require.NoError(t, err)
		assert.Equal(t, ActionReuse, resolution.Action)
	})

	t.Run("template conflict menu destroy", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 9000).Return("stopped", nil)
		mockQm.On("IsTemplate", ctx, 9000).Return(true, nil)

		s := NewVMIDService(mockQm, newTestPrompter("2\n"))
		resolution, err := s.Resolve(ctx, 9000, false)
		require.NoError(t, err)
		assert.Equal(t, ActionRecreate, resolution.Action)
	})

	t.Run("VM conflict menu choose another", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		// 9000 被普通 VM 占用，操作员换到 9001，9001 空闲
		mockQm.On("Status", ctx, 9000).Return("running", nil)
		mockQm.On("IsTemplate", ctx, 9000).Return(false, nil)
		mockQm.On("Status", ctx, 100).Return("", qm.ErrVMNotFound)
		mockQm.On("Status", ctx, 9001).Return("", qm.ErrVMNotFound)

		// 第一次输入选菜单第 2 项（换一个），NextFree 建议 100，手动输入 9001
		s := NewVMIDService(mockQm, newTestPrompter("2\n9001\n"))
		resolution, err := s.Resolve(ctx, 9000, false)
		require.NoError(t, err)
		assert.Equal(t, 9001, resolution.VMID)
		assert.Equal(t, ActionCreate, resolution.Action)
	})

	t.Run("unspecified VMID with assume yes picks next free", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Status", ctx, 100).Return("running", nil)
		mockQm.On("Status", ctx, 101).Return("", qm.ErrVMNotFound)

		s := NewVMIDService(mockQm, newTestPrompter(""))
		resolution, err := s.Resolve(ctx, 0, true)
		require.NoError(t, err)
		assert.Equal(t, 101, resolution.VMID)
		assert.Equal(t, ActionCreate, resolution.Action)
	})
}

func TestVMIDService_NextFree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	mockQm := qm.NewMockClient()
	mockQm.On("Status", ctx, 100).Return("running", nil)
	mockQm.On("Status", ctx, 101).Return("stopped", nil)
	mockQm.On("Status", ctx, 102).Return("", qm.ErrVMNotFound)

	s := NewVMIDService(mockQm, newTestPrompter(""))
	vmid, err := s.NextFree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 102, vmid)
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "reuse", ActionReuse.String())
	assert.Equal(t, "recreate", ActionRecreate.String())
	assert.Equal(t, "unknown", Action(99).String())
}
