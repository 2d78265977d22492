package model

import (
	"time"

	"gorm.io/gorm"
)

// Image 已下载的云镜像表
type Image struct {
	ID        string         `gorm:"primaryKey;type:text;column:id" json:"id"`                                  // img-{id}
	Release   string         `gorm:"type:text;not null;index:idx_images_release;column:release" json:"release"` // 发行版名称，自定义镜像为 custom
	URL       string         `gorm:"type:text;column:url" json:"url"`                                           // 下载 URL
	Filename  string         `gorm:"type:text;not null;column:filename" json:"filename"`                        // 文件名
	Path      string         `gorm:"type:text;not null;column:path" json:"path"`                                // 本地路径
	SHA256    string         `gorm:"type:text;column:sha256" json:"sha256"`                                     // 文件摘要
	SizeBytes int64          `gorm:"type:integer;column:size_bytes" json:"size_bytes"`                          // 文件大小（字节）
	CreatedAt time.Time      `gorm:"type:datetime;not null;index:idx_images_created_at;column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:datetime;not null;column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"type:datetime;index:idx_images_deleted_at;column:deleted_at" json:"deleted_at,omitempty"` // 软删除
}

// TableName 指定表名
func (Image) TableName() string {
	return "images"
}
