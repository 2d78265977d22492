package service

import (
	"testing"
	"time"

	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageConversion(t *testing.T) {
	t.Parallel()

	e := &entity.Image{
		ID:        "img-abc",
		Release:   "ubuntu-noble",
		URL:       "https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img",
		Filename:  "noble-server-cloudimg-amd64.img",
		Path:      "/data/images/noble-server-cloudimg-amd64.img",
		SHA256:    "deadbeef",
		SizeBytes: 1234,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	m, err := imageEntityToModel(e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, m.ID)
	assert.Equal(t, e.Release, m.Release)
	assert.Equal(t, e.SizeBytes, m.SizeBytes)
	assert.False(t, m.CreatedAt.IsZero())

	back, err := imageModelToEntity(m)
	require.NoError(t, err)
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Path, back.Path)
	assert.Equal(t, e.SHA256, back.SHA256)
	assert.Equal(t, e.CreatedAt, back.CreatedAt)
}

func TestImageConversionEmptyCreatedAt(t *testing.T) {
	t.Parallel()

	m, err := imageEntityToModel(&entity.Image{ID: "img-x"})
	require.NoError(t, err)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestTemplateConversion(t *testing.T) {
	t.Parallel()

	e := &entity.Template{
		ID:        "tpl-abc",
		RunID:     "run-abc",
		VMID:      9000,
		Name:      "ubuntu-noble-tpl",
		Storage:   "local-lvm",
		ImageID:   "img-abc",
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	m, err := templateEntityToModel(e)
	require.NoError(t, err)
	assert.Equal(t, e.VMID, m.VMID)
	assert.Equal(t, e.RunID, m.RunID)

	back, err := templateModelToEntity(m)
	require.NoError(t, err)
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Name, back.Name)
	assert.Equal(t, e.CreatedAt, back.CreatedAt)
}

func TestSpecToSummary(t *testing.T) {
	t.Parallel()

	spec := &entity.TemplateSpec{
		RunID:      "run-abc",
		VMID:       9000,
		Name:       "ubuntu-noble-tpl",
		Bridge:     "vmbr0",
		Storage:    "local-lvm",
		ImageName:  "ubuntu-noble",
		MemoryMB:   2048,
		Cores:      2,
		DiskSize:   "8G",
		User:       "ubuntu",
		SSHKeyPath: "/root/.ssh/id_ed25519.pub",
	}

	summary := specToSummary(spec, true)
	assert.Equal(t, "run-abc", summary.RunID)
	assert.Equal(t, 9000, summary.VMID)
	assert.Equal(t, "vmbr0", summary.Bridge)
	assert.Equal(t, "ubuntu-noble", summary.ImageName)
	assert.True(t, summary.HasSSHKey)
	assert.True(t, summary.Reused)

	summary = specToSummary(&entity.TemplateSpec{}, false)
	assert.False(t, summary.HasSSHKey)
	assert.False(t, summary.Reused)
}
