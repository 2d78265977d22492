package entity

// TemplateSpec 一次模板制作的完整输入
// 由配置解析、交互式选择和凭据收集共同填充
type TemplateSpec struct {
	RunID     string // 本次运行的 ID: run-{id}
	VMID      int    // 目标 VMID
	Name      string // 模板名称
	Bridge    string // 网桥
	Storage   string // 存储池
	ImagePath string // 云镜像本地路径
	ImageName string // 镜像的显示名称（发行版名或文件名）
	MemoryMB  int    // 内存（MB）
	Cores     int    // CPU 核心数
	DiskSize  string // 磁盘目标大小（qm resize 语法）
	Timezone  string // 镜像时区，空表示不修改

	User         string // cloud-init 用户名
	PasswordHash string // cloud-init 密码 hash（可能为空）
	SSHKeyPath   string // SSH 公钥文件路径（可能为空）
}

// TemplateSummary 制作完成后的摘要，打印给操作员
type TemplateSummary struct {
	RunID     string `json:"run_id"`
	VMID      int    `json:"vmid"`
	Name      string `json:"name"`
	Bridge    string `json:"bridge"`
	Storage   string `json:"storage"`
	ImageName string `json:"image_name"`
	MemoryMB  int    `json:"memory_mb"`
	Cores     int    `json:"cores"`
	DiskSize  string `json:"disk_size"`
	User      string `json:"user"`
	HasSSHKey bool   `json:"has_ssh_key"`
	Reused    bool   `json:"reused"` // true 表示复用已有模板，只更新了凭据
}

// Template 目录中记录的一次成功构建
type Template struct {
	ID        string `json:"id"`    // 模板记录 ID: tpl-{id}
	RunID     string `json:"run_id"`
	VMID      int    `json:"vmid"`
	Name      string `json:"name"`
	Storage   string `json:"storage"`
	ImageID   string `json:"image_id"` // 关联的镜像记录 ID，自定义镜像可能为空
	CreatedAt string `json:"created_at"`
}
