// Package config 提供配置解析
// 优先级：命令行标志 > 环境变量 > 默认值
// 命令行标志在 cmd 层绑定，这里只负责环境变量和默认值
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jimyag/pvetpl/pkg/opserror"
)

// VMID 的合法范围，与 Proxmox VE 一致
const (
	MinVMID = 100
	MaxVMID = 999999999
)

type Config struct {
	// VMID 目标模板的 VMID
	// 0 表示未指定，进入交互式选择
	// 可以通过环境变量 PVETPL_VMID 配置
	VMID int

	// Name 模板名称
	// 可以通过环境变量 PVETPL_NAME 配置
	Name string

	// Bridge 网桥名称
	// 可以通过环境变量 PVETPL_BRIDGE 配置，默认 vmbr0
	Bridge string

	// Storage 存储池名称
	// 空表示未指定，进入交互式选择
	// 可以通过环境变量 PVETPL_STORAGE 配置
	Storage string

	// Image 自定义云镜像路径
	// 空表示使用内置的 Ubuntu 发行版列表
	// 可以通过环境变量 PVETPL_IMAGE 配置
	Image string

	// User cloud-init 的用户名
	// 可以通过环境变量 PVETPL_USER 配置，默认 ubuntu
	User string

	// Password cloud-init 的密码（明文，使用前会被 hash）
	// 可以通过环境变量 PVETPL_PASSWORD 配置
	Password string

	// SSHKey SSH 公钥文件路径
	// 可以通过环境变量 PVETPL_SSHKEY 配置
	SSHKey string

	// AssumeYes 非交互模式，所有确认都选择默认值
	// 可以通过环境变量 PVETPL_YES 配置
	AssumeYes bool

	// DataDir 数据目录，存放下载的镜像和目录数据库
	// 可以通过环境变量 PVETPL_DATA_DIR 配置
	// 默认：~/.local/share/pvetpl
	DataDir string

	// MemoryMB 模板的内存大小（MB）
	// 可以通过环境变量 PVETPL_MEMORY 配置，默认 2048
	MemoryMB int

	// Cores 模板的 CPU 核心数
	// 可以通过环境变量 PVETPL_CORES 配置，默认 2
	Cores int

	// DiskSize 导入后磁盘调整到的大小（qm resize 语法，如 "8G"）
	// 可以通过环境变量 PVETPL_DISK_SIZE 配置，默认 8G
	DiskSize string

	// Timezone 写入镜像的时区，空表示不修改
	// 可以通过环境变量 PVETPL_TIMEZONE 配置
	Timezone string

	// SnippetsDir snippets 目录，必须属于 SnippetsStorage 指定存储的 snippets 内容
	// 非空时会生成 vendor-data 片段并通过 cicustom 挂到模板上
	// 可以通过环境变量 PVETPL_SNIPPETS_DIR 配置，默认不启用
	SnippetsDir string

	// SnippetsStorage SnippetsDir 所属的存储名称，cicustom 引用按它拼卷 ID
	// 可以通过环境变量 PVETPL_SNIPPETS_STORAGE 配置，默认 local
	// （local 存储的 snippets 目录是 /var/lib/vz/snippets）
	SnippetsStorage string
}

func New() (*Config, error) {
	cfg := &Config{
		VMID:      getEnvInt("PVETPL_VMID", 0),
		Name:      os.Getenv("PVETPL_NAME"),
		Bridge:    getEnvString("PVETPL_BRIDGE", "vmbr0"),
		Storage:   os.Getenv("PVETPL_STORAGE"),
		Image:     os.Getenv("PVETPL_IMAGE"),
		User:      getEnvString("PVETPL_USER", "ubuntu"),
		Password:  os.Getenv("PVETPL_PASSWORD"),
		SSHKey:    os.Getenv("PVETPL_SSHKEY"),
		AssumeYes: getEnvBool("PVETPL_YES", false),
		DataDir:   getDataDir(),
		MemoryMB:  getEnvInt("PVETPL_MEMORY", 2048),
		Cores:     getEnvInt("PVETPL_CORES", 2),
		DiskSize:  getEnvString("PVETPL_DISK_SIZE", "8G"),
		Timezone:  os.Getenv("PVETPL_TIMEZONE"),

		SnippetsDir:     os.Getenv("PVETPL_SNIPPETS_DIR"),
		SnippetsStorage: getEnvString("PVETPL_SNIPPETS_STORAGE", "local"),
	}
	return cfg, nil
}

// Validate 校验配置
// 只校验结构，不访问宿主机资源（存储池、镜像等在各自的服务里校验）
func (c *Config) Validate() error {
	if c.VMID != 0 && (c.VMID < MinVMID || c.VMID > MaxVMID) {
		return opserror.WrapError(opserror.ErrInvalidVMID,
			"VMID must be between "+strconv.Itoa(MinVMID)+" and "+strconv.Itoa(MaxVMID), nil)
	}
	if c.User == "" {
		return opserror.NewError("Config.InvalidUser", "user must not be empty")
	}
	if c.MemoryMB <= 0 {
		return opserror.NewError("Config.InvalidMemory", "memory must be > 0")
	}
	if c.Cores <= 0 {
		return opserror.NewError("Config.InvalidCores", "cores must be > 0")
	}
	return nil
}

// DatabasePath 返回目录数据库的路径
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pvetpl.db")
}

// ImagesDir 返回镜像下载目录
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "images")
}

// getEnvString 获取字符串环境变量，空时返回默认值
func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt 获取整数环境变量，无法解析时返回默认值
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvBool 获取布尔环境变量
// "1" / "true" / "yes" 视为 true
func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

// getDataDir 获取数据目录，优先使用环境变量
func getDataDir() string {
	// 1. 优先使用环境变量 PVETPL_DATA_DIR
	if dir := os.Getenv("PVETPL_DATA_DIR"); dir != "" {
		return dir
	}

	// 2. 使用用户主目录下的 .local/share/pvetpl
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "pvetpl")
	}

	// 3. 如果无法获取主目录，使用当前目录下的 data
	return filepath.Join(".", "data")
}
