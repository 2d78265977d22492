package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jimyag/pvetpl/internal/pvetpl/repository/model"
)

// ImageRepository 镜像记录仓库接口
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	GetByID(ctx context.Context, id string) (*model.Image, error)
	GetByPath(ctx context.Context, path string) (*model.Image, error)
	List(ctx context.Context, release string) ([]*model.Image, error)
	Update(ctx context.Context, image *model.Image) error
	Delete(ctx context.Context, id string) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository 创建镜像记录仓库
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create 创建镜像记录
func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetByID 根据 ID 获取镜像记录
func (r *imageRepository) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByPath 根据本地路径获取镜像记录
func (r *imageRepository) GetByPath(ctx context.Context, path string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("path = ?", path).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// List 列出镜像记录
// release 非空时只返回该发行版的记录
func (r *imageRepository) List(ctx context.Context, release string) ([]*model.Image, error) {
	var images []*model.Image
	query := r.db.WithContext(ctx).Model(&model.Image{})

	if release != "" {
		query = query.Where("release = ?", release)
	}

	if err := query.Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Update 更新镜像记录
func (r *imageRepository) Update(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Save(image).Error
}

// Delete 软删除镜像记录
func (r *imageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{}).Error
}
