// Package service 提供业务逻辑层的服务实现
package service

import (
	"time"

	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository/model"
	"github.com/jinzhu/copier"
)

// imageEntityToModel 将 entity.Image 转换为 model.Image
func imageEntityToModel(e *entity.Image) (*model.Image, error) {
	m := &model.Image{}
	if err := copier.Copy(m, e); err != nil {
		return nil, err
	}

	// 处理时间字段
	if e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			m.CreatedAt = t
		} else {
			m.CreatedAt = time.Now()
		}
	} else {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	return m, nil
}

// imageModelToEntity 将 model.Image 转换为 entity.Image
func imageModelToEntity(m *model.Image) (*entity.Image, error) {
	e := &entity.Image{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)

	return e, nil
}

// templateEntityToModel 将 entity.Template 转换为 model.Template
func templateEntityToModel(e *entity.Template) (*model.Template, error) {
	m := &model.Template{}
	if err := copier.Copy(m, e); err != nil {
		return nil, err
	}

	// 处理时间字段
	if e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			m.CreatedAt = t
		} else {
			m.CreatedAt = time.Now()
		}
	} else {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	return m, nil
}

// templateModelToEntity 将 model.Template 转换为 entity.Template
func templateModelToEntity(m *model.Template) (*entity.Template, error) {
	e := &entity.Template{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.Format(time.RFC3339)

	return e, nil
}

// specToSummary 从构建输入生成给操作员看的摘要
func specToSummary(spec *entity.TemplateSpec, reused bool) *entity.TemplateSummary {
	summary := &entity.TemplateSummary{}
	// 字段名一致的部分直接拷贝
	_ = copier.Copy(summary, spec)

	summary.ImageName = spec.ImageName
	summary.HasSSHKey = spec.SSHKeyPath != ""
	summary.Reused = reused
	return summary
}
