package cloudinit

// VendorConfig vendor-data 片段的高级配置
// 模板的 vendor-data 负责客户机首次启动时的通用初始化
// （装 guest agent、升级软件包等），用户相关配置走 qm set 的 cloud-init 参数
type VendorConfig struct {
	Packages       []string // 要安装的软件包（如 qemu-guest-agent）
	PackageUpdate  bool     // 启动时刷新软件源
	PackageUpgrade bool     // 启动时升级软件包
	Timezone       string   // 时区（如 Asia/Shanghai）
	Commands       []string // 启动后执行的命令
	WriteFiles     []WriteFile
}

// WriteFile 要写入客户机的文件
type WriteFile struct {
	Path        string `yaml:"path"`
	Content     string `yaml:"content"`
	Owner       string `yaml:"owner,omitempty"`       // 默认 root:root
	Permissions string `yaml:"permissions,omitempty"` // 默认 0644
}

// MetaData 标准的 cloud-init meta-data 结构
// 可直接序列化为 YAML 格式
type MetaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// UserData 标准的 cloud-init user-data / vendor-data 结构
// 可直接序列化为 YAML 格式
type UserData struct {
	Packages       []string    `yaml:"packages,omitempty"`        // 要安装的软件包列表
	PackageUpdate  bool        `yaml:"package_update,omitempty"`  // 启动时刷新软件源
	PackageUpgrade bool        `yaml:"package_upgrade,omitempty"` // 启动时升级软件包
	Timezone       string      `yaml:"timezone,omitempty"`        // 时区
	RunCmd         []string    `yaml:"runcmd,omitempty"`          // 启动后执行的命令
	WriteFiles     []WriteFile `yaml:"write_files,omitempty"`     // 要写入的文件列表
	SSHPwauth      *bool       `yaml:"ssh_pwauth,omitempty"`      // 启用 SSH 密码认证
}
