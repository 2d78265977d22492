// Package service 提供业务逻辑层的服务实现
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository"
	"github.com/jimyag/pvetpl/pkg/cloudinit"
	"github.com/jimyag/pvetpl/pkg/idgen"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/jimyag/pvetpl/pkg/virtcustomize"
	"github.com/rs/zerolog"
)

// TemplateService 模板构建服务
// 驱动 virt-customize 和 qm 的完整命令序列，把云镜像变成可克隆的模板
type TemplateService struct {
	qmClient     qm.QmClient
	vcClient     virtcustomize.VirtCustomizeClient
	generator    *cloudinit.Generator
	idGen        *idgen.Generator
	templateRepo repository.TemplateRepository

	// snippetsDir 非空时把 vendor-data 片段写到该目录
	// 并通过 --cicustom 挂到模板上
	// snippetsStorage 是该目录所属的存储名称，cicustom 的卷 ID 按它拼
	snippetsDir     string
	snippetsStorage string
}

// NewTemplateService 创建新的 Template Service
func NewTemplateService(
	qmClient qm.QmClient,
	vcClient virtcustomize.VirtCustomizeClient,
	repo *repository.Repository,
	snippetsDir string,
	snippetsStorage string,
) *TemplateService {
	if snippetsStorage == "" {
		snippetsStorage = "local"
	}
	return &TemplateService{
		qmClient:        qmClient,
		vcClient:        vcClient,
		generator:       cloudinit.NewGenerator(),
		idGen:           idgen.DefaultGenerator(),
		templateRepo:    repository.NewTemplateRepository(repo.DB()),
		snippetsDir:     snippetsDir,
		snippetsStorage: snippetsStorage,
	}
}

// Build 从头构建模板
// 先用 virt-customize 预装 qemu-guest-agent，再按固定顺序执行 qm 命令，
// 最后把 VM 转成模板并写入目录数据库
func (s *TemplateService) Build(ctx context.Context, spec *entity.TemplateSpec, imageID string) (*entity.TemplateSummary, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("run_id", spec.RunID).
		Int("vmid", spec.VMID).
		Str("name", spec.Name).
		Msg("Building template")

	if err := s.customizeImage(ctx, spec); err != nil {
		return nil, err
	}

	createOpts := &qm.CreateOptions{
		Name:     spec.Name,
		MemoryMB: spec.MemoryMB,
		Cores:    spec.Cores,
		CPUType:  "host",
		Bridge:   spec.Bridge,
		OSType:   "l26",
		SCSIHw:   "virtio-scsi-pci",
		Agent:    true,
		Tags:     "pvetpl",
	}
	if err := s.qmClient.Create(ctx, spec.VMID, createOpts); err != nil {
		return nil, fmt.Errorf("create VM %d: %w", spec.VMID, err)
	}

	volume, err := s.qmClient.ImportDisk(ctx, spec.VMID, spec.ImagePath, spec.Storage)
	if err != nil {
		return nil, fmt.Errorf("import disk: %w", err)
	}
	logger.Info().
		Int("vmid", spec.VMID).
		Str("volume", volume).
		Msg("Disk imported")

	// 导入的磁盘挂为 scsi0，cloud-init 盘挂为 ide2
	steps := [][]qm.Option{
		{{Name: "scsi0", Value: volume}},
		{{Name: "ide2", Value: spec.Storage + ":cloudinit"}},
		{{Name: "boot", Value: "order=scsi0"}},
		{{Name: "serial0", Value: "socket"}, {Name: "vga", Value: "serial0"}},
	}
	for _, options := range steps {
		if err := s.qmClient.Set(ctx, spec.VMID, options...); err != nil {
			return nil, fmt.Errorf("configure VM %d: %w", spec.VMID, err)
		}
	}

	if err := s.qmClient.Resize(ctx, spec.VMID, "scsi0", spec.DiskSize); err != nil {
		return nil, fmt.Errorf("resize disk: %w", err)
	}

	if err := s.applyCredentials(ctx, spec); err != nil {
		return nil, err
	}

	if err := s.attachVendorSnippet(ctx, spec); err != nil {
		return nil, err
	}

	if err := s.qmClient.Template(ctx, spec.VMID); err != nil {
		return nil, fmt.Errorf("convert VM %d to template: %w", spec.VMID, err)
	}

	if err := s.recordTemplate(ctx, spec, imageID); err != nil {
		return nil, err
	}

	logger.Info().
		Str("run_id", spec.RunID).
		Int("vmid", spec.VMID).
		Msg("Template built successfully")
	return specToSummary(spec, false), nil
}

// Reuse 保留已有模板，只重新应用 cloud-init 凭据
// 未指定名称时从已有模板的配置里取
func (s *TemplateService) Reuse(ctx context.Context, spec *entity.TemplateSpec) (*entity.TemplateSummary, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("run_id", spec.RunID).
		Int("vmid", spec.VMID).
		Msg("Reusing existing template, updating credentials only")

	if spec.Name == "" {
		vmConfig, err := s.qmClient.Config(ctx, spec.VMID)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("vmid", spec.VMID).
				Msg("Failed to read existing template config, name stays empty")
		} else {
			spec.Name = vmConfig["name"]
		}
	}

	if err := s.applyCredentials(ctx, spec); err != nil {
		return nil, err
	}

	logger.Info().
		Int("vmid", spec.VMID).
		Msg("Credentials updated on existing template")
	return specToSummary(spec, true), nil
}

// Destroy 销毁占用目标 VMID 的 VM
// 已停止的 VM stop 会报错，忽略它
func (s *TemplateService) Destroy(ctx context.Context, vmid int) error {
	logger := zerolog.Ctx(ctx)
	logger.Warn().Int("vmid", vmid).Msg("Destroying existing VM")

	if err := s.qmClient.Stop(ctx, vmid); err != nil {
		logger.Debug().
			Err(err).
			Int("vmid", vmid).
			Msg("Stop failed, VM is probably not running")
	}

	if err := s.qmClient.Destroy(ctx, vmid, true); err != nil {
		return fmt.Errorf("destroy VM %d: %w", vmid, err)
	}

	logger.Info().Int("vmid", vmid).Msg("VM destroyed")
	return nil
}

// customizeImage 在导入前用 virt-customize 修改镜像
// 预装 qemu-guest-agent，按需设置时区
func (s *TemplateService) customizeImage(ctx context.Context, spec *entity.TemplateSpec) error {
	logger := zerolog.Ctx(ctx)

	if err := s.vcClient.ValidateDiskPath(spec.ImagePath); err != nil {
		return opserror.WrapError(
			opserror.ErrImageNotFound,
			fmt.Sprintf("image %q is not usable", spec.ImagePath),
			err,
		)
	}

	logger.Info().
		Str("image", spec.ImagePath).
		Msg("Installing qemu-guest-agent into image")
	if err := s.vcClient.InstallPackages(ctx, spec.ImagePath, []string{"qemu-guest-agent"}); err != nil {
		return fmt.Errorf("install qemu-guest-agent: %w", err)
	}

	if spec.Timezone != "" {
		if err := s.vcClient.SetTimezone(ctx, spec.ImagePath, spec.Timezone); err != nil {
			return fmt.Errorf("set timezone: %w", err)
		}
	}
	return nil
}

// applyCredentials 把 cloud-init 凭据写到 VM 配置上
func (s *TemplateService) applyCredentials(ctx context.Context, spec *entity.TemplateSpec) error {
	options := []qm.Option{
		{Name: "ciuser", Value: spec.User},
		{Name: "ipconfig0", Value: "ip=dhcp"},
	}
	if spec.PasswordHash != "" {
		options = append(options, qm.Option{Name: "cipassword", Value: spec.PasswordHash})
	}
	if spec.SSHKeyPath != "" {
		options = append(options, qm.Option{Name: "sshkeys", Value: spec.SSHKeyPath})
	}

	if err := s.qmClient.Set(ctx, spec.VMID, options...); err != nil {
		return fmt.Errorf("apply cloud-init credentials: %w", err)
	}
	return nil
}

// attachVendorSnippet 生成 vendor-data 片段并挂到模板上
// snippetsDir 未配置时跳过
func (s *TemplateService) attachVendorSnippet(ctx context.Context, spec *entity.TemplateSpec) error {
	if s.snippetsDir == "" {
		return nil
	}
	logger := zerolog.Ctx(ctx)

	vendorData, err := s.generator.GenerateVendorData(&cloudinit.VendorConfig{
		Packages:      []string{"qemu-guest-agent"},
		PackageUpdate: true,
		Timezone:      spec.Timezone,
		Commands:      []string{"systemctl enable --now qemu-guest-agent"},
	})
	if err != nil {
		return fmt.Errorf("generate vendor data: %w", err)
	}

	filename := fmt.Sprintf("pvetpl-vendor-%d.yaml", spec.VMID)
	snippetPath := filepath.Join(s.snippetsDir, filename)
	if err := os.WriteFile(snippetPath, []byte(vendorData), 0o644); err != nil {
		return fmt.Errorf("write vendor snippet: %w", err)
	}

	volume := s.snippetsStorage + ":snippets/" + filename
	if err := s.qmClient.Set(ctx, spec.VMID, qm.Option{Name: "cicustom", Value: "vendor=" + volume}); err != nil {
		return fmt.Errorf("attach vendor snippet: %w", err)
	}

	logger.Info().
		Str("snippet", snippetPath).
		Str("volume", volume).
		Msg("Vendor snippet attached")
	return nil
}

// recordTemplate 把成功的构建写入目录数据库
// 目录只是元数据，写失败不影响已经建好的模板，降级为警告
func (s *TemplateService) recordTemplate(ctx context.Context, spec *entity.TemplateSpec, imageID string) error {
	logger := zerolog.Ctx(ctx)

	templateID, err := s.idGen.GenerateTemplateID()
	if err != nil {
		return fmt.Errorf("generate template ID: %w", err)
	}

	template := &entity.Template{
		ID:        templateID,
		RunID:     spec.RunID,
		VMID:      spec.VMID,
		Name:      spec.Name,
		Storage:   spec.Storage,
		ImageID:   imageID,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	templateModel, err := templateEntityToModel(template)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to convert template to model, skipping catalog record")
		return nil
	}
	if err := s.templateRepo.Create(ctx, templateModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to save template to database, skipping catalog record")
		return nil
	}

	logger.Info().
		Str("template_id", templateID).
		Int("vmid", spec.VMID).
		Msg("Template saved to database")
	return nil
}

// ListTemplates 列出目录中记录的所有构建
func (s *TemplateService) ListTemplates(ctx context.Context) ([]*entity.Template, error) {
	templateModels, err := s.templateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates from database: %w", err)
	}

	templates := make([]*entity.Template, 0, len(templateModels))
	for _, templateModel := range templateModels {
		template, err := templateModelToEntity(templateModel)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Str("template_id", templateModel.ID).
				Msg("Failed to convert template model to entity, skipping")
			continue
		}
		templates = append(templates, template)
	}
	return templates, nil
}
