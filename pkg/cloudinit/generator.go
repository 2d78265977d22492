package cloudinit

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Generator cloud-init 配置生成器
type Generator struct{}

// NewGenerator 创建新的 cloud-init 生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateMetaData 生成 meta-data 文件内容
func (g *Generator) GenerateMetaData(hostname string) (string, error) {
	if hostname == "" {
		hostname = "localhost"
	}

	instanceID, err := generateInstanceID()
	if err != nil {
		return "", err
	}

	metaData := &MetaData{
		InstanceID:    instanceID,
		LocalHostname: hostname,
	}

	yamlData, err := yaml.Marshal(metaData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meta-data to YAML: %v", err)
	}

	return string(yamlData), nil
}

// GenerateVendorData 生成 vendor-data 片段内容
// 片段上传到支持 snippets 的存储后，通过 qm set --cicustom 挂到模板上
func (g *Generator) GenerateVendorData(config *VendorConfig) (string, error) {
	if config == nil {
		return "", fmt.Errorf("config is required")
	}

	userData := &UserData{
		Packages:       config.Packages,
		PackageUpdate:  config.PackageUpdate,
		PackageUpgrade: config.PackageUpgrade,
		Timezone:       config.Timezone,
		RunCmd:         config.Commands,
		WriteFiles:     config.WriteFiles,
	}

	return g.GenerateUserDataFromStruct(userData)
}

// GenerateUserDataFromStruct 直接从 UserData 结构生成 cloud-config 文件内容
// 这个方法提供最大的灵活性，允许调用方完全控制输出
func (g *Generator) GenerateUserDataFromStruct(userData *UserData) (string, error) {
	if userData == nil {
		return "", fmt.Errorf("userData is required")
	}

	yamlData, err := yaml.Marshal(userData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user-data to YAML: %v", err)
	}

	// 添加 cloud-config header
	result := "#cloud-config\n" + string(yamlData)
	return result, nil
}

// HashPassword 使用 bcrypt 加密密码
// 密码在交给 qm set --cipassword 之前必须先 hash，避免明文落入 VM 配置
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// generateInstanceID 生成随机的 instance-id
func generateInstanceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("i-%x", b), nil
}
