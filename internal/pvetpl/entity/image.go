// Package entity 定义业务实体
package entity

// Image 已下载的云镜像记录
type Image struct {
	ID        string `json:"id"`         // 镜像记录 ID: img-{id}
	Release   string `json:"release"`    // 发行版名称（如 ubuntu-noble），自定义镜像为 custom
	URL       string `json:"url"`        // 下载 URL，自定义镜像为空
	Filename  string `json:"filename"`   // 文件名
	Path      string `json:"path"`       // 本地路径
	SHA256    string `json:"sha256"`     // 文件摘要
	SizeBytes int64  `json:"size_bytes"` // 文件大小（字节）
	CreatedAt string `json:"created_at"` // 下载时间
}
