package model

import (
	"time"

	"gorm.io/gorm"
)

// Template 已构建模板表
type Template struct {
	ID        string         `gorm:"primaryKey;type:text;column:id" json:"id"` // tpl-{id}
	RunID     string         `gorm:"type:text;not null;column:run_id" json:"run_id"`
	VMID      int            `gorm:"type:integer;not null;index:idx_templates_vmid;column:vmid" json:"vmid"`
	Name      string         `gorm:"type:text;not null;column:name" json:"name"`
	Storage   string         `gorm:"type:text;not null;column:storage" json:"storage"`
	ImageID   string         `gorm:"type:text;column:image_id" json:"image_id"` // 关联的镜像记录，自定义镜像可能为空
	CreatedAt time.Time      `gorm:"type:datetime;not null;index:idx_templates_created_at;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"type:datetime;index:idx_templates_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (Template) TableName() string {
	return "templates"
}
