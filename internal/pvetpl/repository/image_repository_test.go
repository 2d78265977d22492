package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/pvetpl/internal/pvetpl/repository/model"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	require.NoError(t, err)

	// 使用 t.Cleanup 确保在测试真正结束时清理，支持并发测试
	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return repo
}

func TestImageRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)

	imageRepo := NewImageRepository(repo.DB())
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		image := &model.Image{
			ID:        "img-123",
			Release:   "ubuntu-noble",
			URL:       "https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img",
			Filename:  "noble-server-cloudimg-amd64.img",
			Path:      "/var/lib/pvetpl/images/noble-server-cloudimg-amd64.img",
			SHA256:    "deadbeef",
			SizeBytes: 600 * 1024 * 1024,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err := imageRepo.Create(ctx, image)
		assert.NoError(t, err)

		got, err := imageRepo.GetByID(ctx, "img-123")
		assert.NoError(t, err)
		assert.Equal(t, image.ID, got.ID)
		assert.Equal(t, image.Release, got.Release)
		assert.Equal(t, image.SHA256, got.SHA256)
	})

	t.Run("GetByPath", func(t *testing.T) {
		image := &model.Image{
			ID:        "img-456",
			Release:   "ubuntu-jammy",
			Filename:  "jammy-server-cloudimg-amd64.img",
			Path:      "/var/lib/pvetpl/images/jammy-server-cloudimg-amd64.img",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		require.NoError(t, imageRepo.Create(ctx, image))

		got, err := imageRepo.GetByPath(ctx, image.Path)
		assert.NoError(t, err)
		assert.Equal(t, "img-456", got.ID)

		_, err = imageRepo.GetByPath(ctx, "/nonexistent")
		assert.Error(t, err)
	})

	t.Run("List filtered by release", func(t *testing.T) {
		images, err := imageRepo.List(ctx, "ubuntu-noble")
		assert.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "img-123", images[0].ID)

		all, err := imageRepo.List(ctx, "")
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)
	})

	t.Run("Update", func(t *testing.T) {
		got, err := imageRepo.GetByID(ctx, "img-123")
		require.NoError(t, err)

		got.SHA256 = "cafebabe"
		require.NoError(t, imageRepo.Update(ctx, got))

		updated, err := imageRepo.GetByID(ctx, "img-123")
		assert.NoError(t, err)
		assert.Equal(t, "cafebabe", updated.SHA256)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, imageRepo.Delete(ctx, "img-456"))

		_, err := imageRepo.GetByID(ctx, "img-456")
		assert.Error(t, err)
	})
}
