package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/jimyag/pvetpl/pkg/virtcustomize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSpec() *entity.TemplateSpec {
	return &entity.TemplateSpec{
		RunID:        "run-test",
		VMID:         9000,
		Name:         "ubuntu-noble-tpl",
		Bridge:       "vmbr0",
		Storage:      "local-lvm",
		ImagePath:    "/data/images/noble-server-cloudimg-amd64.img",
		ImageName:    "ubuntu-noble",
		MemoryMB:     2048,
		Cores:        2,
		DiskSize:     "8G",
		User:         "ubuntu",
		PasswordHash: "$2a$10$fakehash",
	}
}

func TestTemplateService_Build(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("full sequence", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		volume := fmt.Sprintf("%s:vm-%d-disk-0", spec.Storage, spec.VMID)

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockVc.On("ValidateDiskPath", spec.ImagePath).Return(nil)
		mockVc.On("InstallPackages", ctx, spec.ImagePath, []string{"qemu-guest-agent"}).Return(nil)

		mockQm.On("Create", ctx, spec.VMID, mock.MatchedBy(func(opts *qm.CreateOptions) bool {
			return opts.Name == spec.Name &&
				opts.MemoryMB == 2048 &&
				opts.Cores == 2 &&
				opts.Bridge == "vmbr0" &&
				opts.Agent
		})).Return(nil)
		mockQm.On("ImportDisk", ctx, spec.VMID, spec.ImagePath, spec.Storage).Return(volume, nil)
		mockQm.On("Set", ctx, spec.VMID, []qm.Option{{Name: "scsi0", Value: volume}}).Return(nil)
		mockQm.On("Set", ctx, spec.VMID, []qm.Option{{Name: "ide2", Value: "local-lvm:cloudinit"}}).Return(nil)
		mockQm.On("Set", ctx, spec.VMID, []qm.Option{{Name: "boot", Value: "order=scsi0"}}).Return(nil)
		mockQm.On("Set", ctx, spec.VMID, []qm.Option{
			{Name: "serial0", Value: "socket"},
			{Name: "vga", Value: "serial0"},
		}).Return(nil)
		mockQm.On("Resize", ctx, spec.VMID, "scsi0", "8G").Return(nil)
		mockQm.On("Set", ctx, spec.VMID, []qm.Option{
			{Name: "ciuser", Value: "ubuntu"},
			{Name: "ipconfig0", Value: "ip=dhcp"},
			{Name: "cipassword", Value: spec.PasswordHash},
		}).Return(nil)
		mockQm.On("Template", ctx, spec.VMID).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		summary, err := s.Build(ctx, spec, "img-test")
		require.NoError(t, err)

		assert.Equal(t, 9000, summary.VMID)
		assert.Equal(t, "ubuntu-noble-tpl", summary.Name)
		assert.Equal(t, "ubuntu-noble", summary.ImageName)
		assert.False(t, summary.Reused)
		assert.False(t, summary.HasSSHKey)

		mockQm.AssertExpectations(t)
		mockVc.AssertExpectations(t)
	})

	t.Run("timezone applied before import", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		spec.Timezone = "Asia/Shanghai"
		spec.PasswordHash = ""
		spec.SSHKeyPath = "/root/.ssh/id_ed25519.pub"

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockVc.On("ValidateDiskPath", spec.ImagePath).Return(nil)
		mockVc.On("InstallPackages", ctx, spec.ImagePath, []string{"qemu-guest-agent"}).Return(nil)
		mockVc.On("SetTimezone", ctx, spec.ImagePath, "Asia/Shanghai").Return(nil)

		mockQm.On("Create", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("ImportDisk", ctx, spec.VMID, spec.ImagePath, spec.Storage).Return("local-lvm:vm-9000-disk-0", nil)
		mockQm.On("Set", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("Resize", ctx, spec.VMID, "scsi0", "8G").Return(nil)
		mockQm.On("Template", ctx, spec.VMID).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		summary, err := s.Build(ctx, spec, "img-test")
		require.NoError(t, err)
		assert.True(t, summary.HasSSHKey)
		mockVc.AssertExpectations(t)
	})

	t.Run("create failure aborts", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockVc.On("ValidateDiskPath", spec.ImagePath).Return(nil)
		mockVc.On("InstallPackages", ctx, spec.ImagePath, []string{"qemu-guest-agent"}).Return(nil)
		mockQm.On("Create", ctx, spec.VMID, mock.Anything).Return(fmt.Errorf("create failed"))

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		_, err := s.Build(ctx, spec, "img-test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create VM")
		mockQm.AssertNotCalled(t, "ImportDisk", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vendor snippet written and attached", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		snippetsDir := t.TempDir()

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockVc.On("ValidateDiskPath", spec.ImagePath).Return(nil)
		mockVc.On("InstallPackages", ctx, spec.ImagePath, []string{"qemu-guest-agent"}).Return(nil)

		mockQm.On("Create", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("ImportDisk", ctx, spec.VMID, spec.ImagePath, spec.Storage).Return("local-lvm:vm-9000-disk-0", nil)
		mockQm.On("Set", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("Resize", ctx, spec.VMID, "scsi0", "8G").Return(nil)
		mockQm.On("Template", ctx, spec.VMID).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), snippetsDir, "local")
		_, err := s.Build(ctx, spec, "img-test")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(snippetsDir, "pvetpl-vendor-9000.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "#cloud-config")
		assert.Contains(t, string(data), "qemu-guest-agent")

		mockQm.AssertCalled(t, "Set", ctx, spec.VMID,
			[]qm.Option{{Name: "cicustom", Value: "vendor=local:snippets/pvetpl-vendor-9000.yaml"}})
	})

	t.Run("vendor snippet follows configured storage", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		snippetsDir := t.TempDir()

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockVc.On("ValidateDiskPath", spec.ImagePath).Return(nil)
		mockVc.On("InstallPackages", ctx, spec.ImagePath, []string{"qemu-guest-agent"}).Return(nil)

		mockQm.On("Create", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("ImportDisk", ctx, spec.VMID, spec.ImagePath, spec.Storage).Return("local-lvm:vm-9000-disk-0", nil)
		mockQm.On("Set", ctx, spec.VMID, mock.Anything).Return(nil)
		mockQm.On("Resize", ctx, spec.VMID, "scsi0", "8G").Return(nil)
		mockQm.On("Template", ctx, spec.VMID).Return(nil)

		// snippets 目录属于 cephfs 存储时，cicustom 的卷 ID 要跟着变
		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), snippetsDir, "cephfs")
		_, err := s.Build(ctx, spec, "img-test")
		require.NoError(t, err)

		mockQm.AssertCalled(t, "Set", ctx, spec.VMID,
			[]qm.Option{{Name: "cicustom", Value: "vendor=cephfs:snippets/pvetpl-vendor-9000.yaml"}})
	})
}

func TestTemplateService_Reuse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("credentials only", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockQm.On("Set", ctx, spec.VMID, []qm.Option{
			{Name: "ciuser", Value: "ubuntu"},
			{Name: "ipconfig0", Value: "ip=dhcp"},
			{Name: "cipassword", Value: spec.PasswordHash},
		}).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		summary, err := s.Reuse(ctx, spec)
		require.NoError(t, err)
		assert.True(t, summary.Reused)
		assert.Equal(t, "ubuntu-noble-tpl", summary.Name)

		// 名称已指定时不用去读模板配置，复用路径也不能重建 VM
		mockQm.AssertNotCalled(t, "Config", mock.Anything, mock.Anything)
		mockQm.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		mockQm.AssertNotCalled(t, "ImportDisk", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockQm.AssertNotCalled(t, "Template", mock.Anything, mock.Anything)
		mockQm.AssertExpectations(t)
	})

	t.Run("empty name falls back to existing template name", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		spec.Name = ""

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockQm.On("Config", ctx, spec.VMID).Return(map[string]string{
			"name":   "noble-template",
			"ostype": "l26",
		}, nil)
		mockQm.On("Set", ctx, spec.VMID, mock.Anything).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		summary, err := s.Reuse(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, "noble-template", summary.Name)
		mockQm.AssertExpectations(t)
	})

	t.Run("config failure leaves name empty", func(t *testing.T) {
		t.Parallel()

		spec := testSpec()
		spec.Name = ""

		mockQm := qm.NewMockClient()
		mockVc := virtcustomize.NewMockClient()

		mockQm.On("Config", ctx, spec.VMID).Return(nil, fmt.Errorf("config failed"))
		mockQm.On("Set", ctx, spec.VMID, mock.Anything).Return(nil)

		s := NewTemplateService(mockQm, mockVc, setupTestRepo(t), "", "")
		summary, err := s.Reuse(ctx, spec)
		require.NoError(t, err)
		assert.Empty(t, summary.Name)
	})
}

func TestTemplateService_Destroy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stop failure is ignored", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Stop", ctx, 9000).Return(fmt.Errorf("VM is not running"))
		mockQm.On("Destroy", ctx, 9000, true).Return(nil)

		s := NewTemplateService(mockQm, virtcustomize.NewMockClient(), setupTestRepo(t), "", "")
		require.NoError(t, s.Destroy(ctx, 9000))
		mockQm.AssertExpectations(t)
	})

	t.Run("destroy failure propagates", func(t *testing.T) {
		t.Parallel()

		mockQm := qm.NewMockClient()
		mockQm.On("Stop", ctx, 9000).Return(nil)
		mockQm.On("Destroy", ctx, 9000, true).Return(fmt.Errorf("destroy failed"))

		s := NewTemplateService(mockQm, virtcustomize.NewMockClient(), setupTestRepo(t), "", "")
		err := s.Destroy(ctx, 9000)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "destroy VM")
	})
}
