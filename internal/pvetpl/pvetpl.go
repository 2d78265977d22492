// Package pvetpl 提供模板制作流程的主入口和初始化逻辑
package pvetpl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimyag/pvetpl/internal/pvetpl/config"
	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository"
	"github.com/jimyag/pvetpl/internal/pvetpl/service"
	"github.com/jimyag/pvetpl/pkg/idgen"
	"github.com/jimyag/pvetpl/pkg/pvesm"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/jimyag/pvetpl/pkg/virtcustomize"
	"github.com/rs/zerolog"
)

// Provisioner 串起一次完整的模板制作：
// 环境检查 → VMID 解析 → 存储选择 → 镜像准备 → 凭据收集 → 构建/复用 → 摘要
type Provisioner struct {
	cfg      *config.Config
	repo     *repository.Repository
	prompter *prompt.Prompter
	out      io.Writer

	vmidService *service.VMIDService
	storage     *service.StorageService
	images      *service.ImageService
	credentials *service.CredentialService
	templates   *service.TemplateService
}

// New 创建 Provisioner 并连好所有依赖
// 先做环境检查，缺少 qm / pvesm / virt-customize 时直接失败，
// 客户端用检查解析出的绝对路径构建
func New(ctx context.Context, cfg *config.Config) (*Provisioner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tools, err := service.NewPreflightService().ResolveTools(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	repo, err := repository.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	qmClient := qm.NewClientWithPath(tools.Qm)
	pvesmClient := pvesm.NewClientWithPath(tools.Pvesm)
	vcClient := virtcustomize.NewClientWithPath(tools.VirtCustomize)

	prompter := prompt.New()

	return &Provisioner{
		cfg:      cfg,
		repo:     repo,
		prompter: prompter,
		out:      os.Stdout,

		vmidService: service.NewVMIDService(qmClient, prompter),
		storage:     service.NewStorageService(pvesmClient, prompter),
		images:      service.NewImageService(repo, prompter, cfg.ImagesDir()),
		credentials: service.NewCredentialService(prompter),
		templates:   service.NewTemplateService(qmClient, vcClient, repo, cfg.SnippetsDir, cfg.SnippetsStorage),
	}, nil
}

// Run 执行一次模板制作，返回给操作员的摘要
func (p *Provisioner) Run(ctx context.Context) (*entity.TemplateSummary, error) {
	logger := zerolog.Ctx(ctx)

	runID, err := idgen.GenerateRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run ID: %w", err)
	}
	logger.Info().Str("run_id", runID).Msg("Starting template provisioning")

	resolution, err := p.vmidService.Resolve(ctx, p.cfg.VMID, p.cfg.AssumeYes)
	if err != nil {
		return nil, err
	}

	creds, err := p.credentials.Collect(ctx, p.cfg.User, p.cfg.Password, p.cfg.SSHKey, p.cfg.AssumeYes)
	if err != nil {
		return nil, err
	}

	// 已有模板只更新凭据，不碰存储和镜像
	if resolution.Action == service.ActionReuse {
		spec := &entity.TemplateSpec{
			RunID:        runID,
			VMID:         resolution.VMID,
			Name:         p.cfg.Name,
			User:         creds.User,
			PasswordHash: creds.PasswordHash,
			SSHKeyPath:   creds.SSHKeyPath,
		}
		summary, err := p.templates.Reuse(ctx, spec)
		if err != nil {
			return nil, err
		}
		p.printSummary(summary)
		return summary, nil
	}

	pool, err := p.storage.SelectPool(ctx, p.cfg.Storage, p.cfg.AssumeYes)
	if err != nil {
		return nil, err
	}

	image, err := p.images.ResolveImage(ctx, p.cfg.Image, p.cfg.AssumeYes)
	if err != nil {
		return nil, err
	}

	name, err := p.resolveName(image)
	if err != nil {
		return nil, err
	}

	spec := &entity.TemplateSpec{
		RunID:        runID,
		VMID:         resolution.VMID,
		Name:         name,
		Bridge:       p.cfg.Bridge,
		Storage:      pool.Name,
		ImagePath:    image.Path,
		ImageName:    imageDisplayName(image),
		MemoryMB:     p.cfg.MemoryMB,
		Cores:        p.cfg.Cores,
		DiskSize:     p.cfg.DiskSize,
		Timezone:     p.cfg.Timezone,
		User:         creds.User,
		PasswordHash: creds.PasswordHash,
		SSHKeyPath:   creds.SSHKeyPath,
	}

	if resolution.Action == service.ActionRecreate {
		if err := p.templates.Destroy(ctx, resolution.VMID); err != nil {
			return nil, err
		}
	}

	summary, err := p.templates.Build(ctx, spec, image.ID)
	if err != nil {
		return nil, err
	}
	p.printSummary(summary)
	return summary, nil
}

// Close 释放资源
func (p *Provisioner) Close() error {
	return p.repo.Close()
}

// resolveName 确定模板名称
// 未配置时交互式询问，非交互模式直接用镜像名派生的默认值
func (p *Provisioner) resolveName(image *entity.Image) (string, error) {
	if p.cfg.Name != "" {
		return p.cfg.Name, nil
	}

	fallback := imageDisplayName(image) + "-template"
	if p.cfg.AssumeYes {
		return fallback, nil
	}

	name, err := p.prompter.Ask("Template name", fallback)
	if err != nil {
		return "", fmt.Errorf("ask template name: %w", err)
	}
	return name, nil
}

// imageDisplayName 返回镜像的可读名称
// 默认镜像用发行版名，自定义镜像用去掉扩展名的文件名
func imageDisplayName(image *entity.Image) string {
	if image.Release != "" && image.Release != "custom" {
		return image.Release
	}
	return strings.TrimSuffix(image.Filename, filepath.Ext(image.Filename))
}

// printSummary 把制作结果打印给操作员
func (p *Provisioner) printSummary(summary *entity.TemplateSummary) {
	fmt.Fprintln(p.out)
	if summary.Reused {
		fmt.Fprintf(p.out, "Template %d kept, cloud-init credentials updated\n", summary.VMID)
	} else {
		fmt.Fprintf(p.out, "Template %d created\n", summary.VMID)
	}
	fmt.Fprintf(p.out, "  Run ID:   %s\n", summary.RunID)
	if summary.Name != "" {
		fmt.Fprintf(p.out, "  Name:     %s\n", summary.Name)
	}
	if !summary.Reused {
		fmt.Fprintf(p.out, "  Image:    %s\n", summary.ImageName)
		fmt.Fprintf(p.out, "  Storage:  %s\n", summary.Storage)
		fmt.Fprintf(p.out, "  Bridge:   %s\n", summary.Bridge)
		fmt.Fprintf(p.out, "  Memory:   %d MB\n", summary.MemoryMB)
		fmt.Fprintf(p.out, "  Cores:    %d\n", summary.Cores)
		fmt.Fprintf(p.out, "  Disk:     %s\n", summary.DiskSize)
	}
	fmt.Fprintf(p.out, "  User:     %s\n", summary.User)
	fmt.Fprintf(p.out, "  SSH key:  %t\n", summary.HasSSHKey)
	fmt.Fprintf(p.out, "\nClone it with: qm clone %d <new-vmid> --name <new-name>\n", summary.VMID)
}
