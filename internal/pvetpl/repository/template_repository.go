package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jimyag/pvetpl/internal/pvetpl/repository/model"
)

// TemplateRepository 模板记录仓库接口
type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	GetByVMID(ctx context.Context, vmid int) (*model.Template, error)
	List(ctx context.Context) ([]*model.Template, error)
	Delete(ctx context.Context, id string) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建模板记录仓库
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create 创建模板记录
func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// GetByVMID 根据 VMID 获取最近一次构建记录
func (r *templateRepository) GetByVMID(ctx context.Context, vmid int) (*model.Template, error) {
	var template model.Template
	err := r.db.WithContext(ctx).
		Where("vmid = ?", vmid).
		Order("created_at DESC").
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// List 列出所有模板记录
func (r *templateRepository) List(ctx context.Context) ([]*model.Template, error) {
	var templates []*model.Template
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Delete 软删除模板记录
func (r *templateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Template{}).Error
}
