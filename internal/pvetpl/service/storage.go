// Package service 提供业务逻辑层的服务实现
package service

import (
	"context"
	"fmt"

	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/jimyag/pvetpl/pkg/pvesm"
	"github.com/rs/zerolog"
)

// StorageService 存储池服务
// 负责列出可用的存储池并确定模板磁盘的落盘位置
type StorageService struct {
	pvesmClient pvesm.PvesmClient
	prompter    *prompt.Prompter
}

// NewStorageService 创建新的 Storage Service
func NewStorageService(pvesmClient pvesm.PvesmClient, prompter *prompt.Prompter) *StorageService {
	return &StorageService{
		pvesmClient: pvesmClient,
		prompter:    prompter,
	}
}

// ListPools 列出所有支持 VM 磁盘的活跃存储池
func (s *StorageService) ListPools(ctx context.Context) ([]pvesm.Pool, error) {
	logger := zerolog.Ctx(ctx)

	pools, err := s.pvesmClient.Status(ctx, "images")
	if err != nil {
		return nil, fmt.Errorf("list storage pools: %w", err)
	}

	active := make([]pvesm.Pool, 0, len(pools))
	for _, pool := range pools {
		if !pool.Active() {
			logger.Debug().
				Str("pool", pool.Name).
				Str("status", pool.Status).
				Msg("Skipping inactive storage pool")
			continue
		}
		active = append(active, pool)
	}

	logger.Info().
		Int("total", len(pools)).
		Int("active", len(active)).
		Msg("Listed storage pools")
	return active, nil
}

// SelectPool 确定要使用的存储池
// 指定了名称时校验它存在且活跃，否则交互式选择
// assumeYes 时未指定名称则直接使用第一个活跃的池
func (s *StorageService) SelectPool(ctx context.Context, name string, assumeYes bool) (*pvesm.Pool, error) {
	logger := zerolog.Ctx(ctx)

	pools, err := s.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, opserror.WrapError(
			opserror.ErrStorageNotFound,
			"no active storage pool supports VM images",
			nil,
		)
	}

	if name != "" {
		for i := range pools {
			if pools[i].Name == name {
				logger.Info().
					Str("pool", name).
					Msg("Using configured storage pool")
				return &pools[i], nil
			}
		}
		return nil, opserror.WrapError(
			opserror.ErrStorageNotFound,
			fmt.Sprintf("storage pool %q not found or inactive", name),
			nil,
		)
	}

	if assumeYes {
		logger.Info().
			Str("pool", pools[0].Name).
			Msg("Non-interactive mode, using first active storage pool")
		return &pools[0], nil
	}

	options := make([]string, 0, len(pools))
	for _, pool := range pools {
		options = append(options, fmt.Sprintf("%s (%s, %.1f GB free)", pool.Name, pool.Type, pool.AvailableGB()))
	}
	idx, err := s.prompter.Select("Select storage pool", options, 0)
	if err != nil {
		return nil, fmt.Errorf("select storage pool: %w", err)
	}

	logger.Info().
		Str("pool", pools[idx].Name).
		Msg("Storage pool selected")
	return &pools[idx], nil
}
