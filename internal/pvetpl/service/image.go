// Package service 提供业务逻辑层的服务实现
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimyag/pvetpl/internal/pvetpl/entity"
	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository"
	"github.com/jimyag/pvetpl/pkg/idgen"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/rs/zerolog"
)

// DefaultImage 默认镜像配置
type DefaultImage struct {
	Name        string // 镜像名称（如：ubuntu-noble）
	DisplayName string // 显示名称（如：Ubuntu 24.04 LTS (Noble Numbat)）
	URL         string // 下载 URL
	Filename    string // 保存的文件名
}

// DefaultImages 默认镜像列表
var DefaultImages = []DefaultImage{
	{
		Name:        "ubuntu-noble",
		DisplayName: "Ubuntu 24.04 LTS (Noble Numbat)",
		URL:         "https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img",
		Filename:    "noble-server-cloudimg-amd64.img",
	},
	{
		Name:        "ubuntu-jammy",
		DisplayName: "Ubuntu 22.04 LTS (Jammy Jellyfish)",
		URL:         "https://cloud-images.ubuntu.com/jammy/current/jammy-server-cloudimg-amd64.img",
		Filename:    "jammy-server-cloudimg-amd64.img",
	},
	{
		Name:        "ubuntu-focal",
		DisplayName: "Ubuntu 20.04 LTS (Focal Fossa)",
		URL:         "https://cloud-images.ubuntu.com/focal/current/focal-server-cloudimg-amd64.img",
		Filename:    "focal-server-cloudimg-amd64.img",
	},
}

// ImageService 镜像服务
// 负责选择、下载和登记云镜像
type ImageService struct {
	idGen      *idgen.Generator
	httpClient *http.Client
	imageRepo  repository.ImageRepository
	prompter   *prompt.Prompter

	imagesDir string
}

// NewImageService 创建新的 Image Service
func NewImageService(repo *repository.Repository, prompter *prompt.Prompter, imagesDir string) *ImageService {
	return &ImageService{
		idGen: idgen.DefaultGenerator(),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // 下载镜像可能需要较长时间
		},
		imageRepo: repository.NewImageRepository(repo.DB()),
		prompter:  prompter,
		imagesDir: imagesDir,
	}
}

// ResolveImage 确定本次构建使用的镜像
// 指定了自定义路径时校验并登记它，否则从默认列表选择并按需下载
// assumeYes 时未指定路径则直接使用默认列表的第一项
func (s *ImageService) ResolveImage(ctx context.Context, customPath string, assumeYes bool) (*entity.Image, error) {
	if customPath != "" {
		return s.registerCustomImage(ctx, customPath)
	}

	img := &DefaultImages[0]
	if !assumeYes {
		options := make([]string, 0, len(DefaultImages))
		for _, d := range DefaultImages {
			options = append(options, d.DisplayName)
		}
		idx, err := s.prompter.Select("Select cloud image", options, 0)
		if err != nil {
			return nil, fmt.Errorf("select cloud image: %w", err)
		}
		img = &DefaultImages[idx]
	}

	return s.EnsureImage(ctx, img)
}

// registerCustomImage 校验并登记用户指定的镜像文件
func (s *ImageService) registerCustomImage(ctx context.Context, path string) (*entity.Image, error) {
	logger := zerolog.Ctx(ctx)

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, opserror.WrapError(
			opserror.ErrImageNotFound,
			fmt.Sprintf("image file %q not found", path),
			err,
		)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".img" && ext != ".qcow2" {
		return nil, opserror.WrapError(
			opserror.ErrImageNotFound,
			fmt.Sprintf("unsupported image format %q, expected .img or .qcow2", ext),
			nil,
		)
	}

	// 同一个文件不重复登记
	if existing, err := s.imageRepo.GetByPath(ctx, path); err == nil {
		logger.Info().
			Str("image_id", existing.ID).
			Str("path", path).
			Msg("Custom image already registered")
		return imageModelToEntity(existing)
	}

	imageID, err := s.idGen.GenerateImageID()
	if err != nil {
		return nil, fmt.Errorf("generate image ID: %w", err)
	}

	image := &entity.Image{
		ID:        imageID,
		Release:   "custom",
		Filename:  filepath.Base(path),
		Path:      path,
		SizeBytes: fileInfo.Size(),
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	imageModel, err := imageEntityToModel(image)
	if err != nil {
		return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to convert image to model", err)
	}
	if err := s.imageRepo.Create(ctx, imageModel); err != nil {
		return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to save image to database", err)
	}

	logger.Info().
		Str("image_id", imageID).
		Str("path", path).
		Msg("Custom image registered")
	return image, nil
}

// EnsureImage 确保默认镜像已下载并登记
// 文件已存在时跳过下载，数据库中已有记录时直接返回
func (s *ImageService) EnsureImage(ctx context.Context, img *DefaultImage) (*entity.Image, error) {
	logger := zerolog.Ctx(ctx)

	savePath := filepath.Join(s.imagesDir, img.Filename)

	if existing, err := s.imageRepo.GetByPath(ctx, savePath); err == nil {
		if _, statErr := os.Stat(savePath); statErr == nil {
			logger.Info().
				Str("image_id", existing.ID).
				Str("path", savePath).
				Msg("Image already downloaded, reusing")
			return imageModelToEntity(existing)
		}

		// 记录还在但文件被删了，重新下载并刷新原记录，不新建第二条
		logger.Warn().
			Str("image_id", existing.ID).
			Str("path", savePath).
			Msg("Image record exists but file is missing, re-downloading")

		sum, size, err := s.downloadImage(ctx, img.URL, savePath)
		if err != nil {
			return nil, err
		}

		existing.SHA256 = sum
		existing.SizeBytes = size
		if err := s.imageRepo.Update(ctx, existing); err != nil {
			return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to update image in database", err)
		}

		logger.Info().
			Str("image_id", existing.ID).
			Str("release", img.Name).
			Msg("Image record refreshed after re-download")
		return imageModelToEntity(existing)
	}

	sum, size, err := s.downloadImage(ctx, img.URL, savePath)
	if err != nil {
		return nil, err
	}

	imageID, err := s.idGen.GenerateImageID()
	if err != nil {
		return nil, fmt.Errorf("generate image ID: %w", err)
	}

	image := &entity.Image{
		ID:        imageID,
		Release:   img.Name,
		URL:       img.URL,
		Filename:  img.Filename,
		Path:      savePath,
		SHA256:    sum,
		SizeBytes: size,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	imageModel, err := imageEntityToModel(image)
	if err != nil {
		return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to convert image to model", err)
	}
	if err := s.imageRepo.Create(ctx, imageModel); err != nil {
		return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to save image to database", err)
	}

	logger.Info().
		Str("image_id", imageID).
		Str("release", img.Name).
		Msg("Image saved to database")
	return image, nil
}

// downloadImage 下载镜像文件，返回 SHA-256 摘要和大小
// 先写临时文件再重命名，避免半截文件被当成完整镜像
func (s *ImageService) downloadImage(ctx context.Context, url, savePath string) (string, int64, error) {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create images directory: %w", err)
	}

	// 检查文件是否已存在
	if fileInfo, err := os.Stat(savePath); err == nil {
		logger.Info().
			Str("path", savePath).
			Msg("Image file already exists, skipping download")
		sum, err := fileSHA256(savePath)
		if err != nil {
			return "", 0, err
		}
		return sum, fileInfo.Size(), nil
	}

	logger.Info().
		Str("url", url).
		Str("path", savePath).
		Msg("Downloading image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	tmpPath := savePath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, hasher), resp.Body)
	if err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("write file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, savePath); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("rename file: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	logger.Info().
		Str("path", savePath).
		Int64("size_bytes", written).
		Str("sha256", sum).
		Msg("Image downloaded successfully")
	return sum, written, nil
}

// fileSHA256 计算已有文件的 SHA-256 摘要
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// GetDefaultImageByName 根据名称获取默认镜像信息
func (s *ImageService) GetDefaultImageByName(name string) *DefaultImage {
	for i := range DefaultImages {
		if DefaultImages[i].Name == name {
			return &DefaultImages[i]
		}
	}
	return nil
}

// ListImages 列出目录中登记的所有镜像
func (s *ImageService) ListImages(ctx context.Context) ([]*entity.Image, error) {
	imageModels, err := s.imageRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list images from database: %w", err)
	}

	images := make([]*entity.Image, 0, len(imageModels))
	for _, imageModel := range imageModels {
		image, err := imageModelToEntity(imageModel)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Str("image_id", imageModel.ID).
				Msg("Failed to convert image model to entity, skipping")
			continue
		}
		images = append(images, image)
	}
	return images, nil
}
