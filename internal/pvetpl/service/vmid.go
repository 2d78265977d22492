// Package service 提供业务逻辑层的服务实现
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimyag/pvetpl/internal/pvetpl/config"
	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/rs/zerolog"
)

// Action 是 VMID 冲突解析后的处理方式
type Action int

const (
	// ActionCreate VMID 空闲，从头构建模板
	ActionCreate Action = iota
	// ActionReuse 该 VMID 已是模板，保留并只更新凭据
	ActionReuse
	// ActionRecreate 该 VMID 上有普通 VM，销毁后重建
	ActionRecreate
)

// String 返回处理方式的可读名称
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionReuse:
		return "reuse"
	case ActionRecreate:
		return "recreate"
	}
	return "unknown"
}

// Resolution VMID 解析结果
type Resolution struct {
	VMID   int
	Action Action
}

// maxVMIDScan 自动寻找空闲 VMID 时最多探测的数量
const maxVMIDScan = 1000

// VMIDService VMID 解析服务
// 根据目标 VMID 上已有的 VM/模板状态决定如何处理冲突
type VMIDService struct {
	qmClient qm.QmClient
	prompter *prompt.Prompter
}

// NewVMIDService 创建新的 VMID Service
func NewVMIDService(qmClient qm.QmClient, prompter *prompt.Prompter) *VMIDService {
	return &VMIDService{
		qmClient: qmClient,
		prompter: prompter,
	}
}

// Resolve 确定本次构建的目标 VMID 和处理方式
// vmid 为 0 表示未指定：交互模式下询问（默认下一个空闲的），
// 非交互模式下直接使用下一个空闲的
func (s *VMIDService) Resolve(ctx context.Context, vmid int, assumeYes bool) (*Resolution, error) {
	logger := zerolog.Ctx(ctx)

	for {
		if vmid == 0 {
			free, err := s.NextFree(ctx)
			if err != nil {
				return nil, err
			}
			if assumeYes {
				vmid = free
			} else {
				vmid, err = s.prompter.AskInt("Enter VMID", free)
				if err != nil {
					return nil, fmt.Errorf("ask VMID: %w", err)
				}
			}
		}

		if vmid < config.MinVMID || vmid > config.MaxVMID {
			return nil, opserror.WrapError(
				opserror.ErrInvalidVMID,
				fmt.Sprintf("VMID %d out of range %d-%d", vmid, config.MinVMID, config.MaxVMID),
				nil,
			)
		}

		_, err := s.qmClient.Status(ctx, vmid)
		if errors.Is(err, qm.ErrVMNotFound) {
			logger.Info().Int("vmid", vmid).Msg("VMID is free")
			return &Resolution{VMID: vmid, Action: ActionCreate}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("check VMID %d: %w", vmid, err)
		}

		isTemplate, err := s.qmClient.IsTemplate(ctx, vmid)
		if err != nil {
			return nil, fmt.Errorf("check template state of VMID %d: %w", vmid, err)
		}

		resolution, retry, err := s.resolveConflict(ctx, vmid, isTemplate, assumeYes)
		if err != nil {
			return nil, err
		}
		if retry {
			// 操作员选择换一个 VMID，重新走一遍
			vmid = 0
			continue
		}
		return resolution, nil
	}
}

// resolveConflict 处理 VMID 已被占用的情况
// retry 为 true 表示需要重新选择 VMID
func (s *VMIDService) resolveConflict(ctx context.Context, vmid int, isTemplate, assumeYes bool) (*Resolution, bool, error) {
	logger := zerolog.Ctx(ctx)

	if isTemplate {
		if assumeYes {
			logger.Info().
				Int("vmid", vmid).
				Msg("VMID is an existing template, keeping it and updating credentials")
			return &Resolution{VMID: vmid, Action: ActionReuse}, false, nil
		}

		idx, err := s.prompter.Select(
			fmt.Sprintf("VMID %d is already a template", vmid),
			[]string{
				"Keep it and update cloud-init credentials",
				"Destroy it and rebuild from scratch",
				"Choose another VMID",
			},
			0,
		)
		if err != nil {
			return nil, false, fmt.Errorf("resolve template conflict: %w", err)
		}
		switch idx {
		case 0:
			return &Resolution{VMID: vmid, Action: ActionReuse}, false, nil
		case 1:
			return &Resolution{VMID: vmid, Action: ActionRecreate}, false, nil
		default:
			return nil, true, nil
		}
	}

	if assumeYes {
		logger.Warn().
			Int("vmid", vmid).
			Msg("VMID has an existing VM, destroying and recreating")
		return &Resolution{VMID: vmid, Action: ActionRecreate}, false, nil
	}

	idx, err := s.prompter.Select(
		fmt.Sprintf("VMID %d is used by an existing VM", vmid),
		[]string{
			"Destroy it and rebuild from scratch",
			"Choose another VMID",
		},
		1,
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolve VM conflict: %w", err)
	}
	if idx == 0 {
		return &Resolution{VMID: vmid, Action: ActionRecreate}, false, nil
	}
	return nil, true, nil
}

// NextFree 从最小合法值开始向上探测，返回第一个空闲的 VMID
func (s *VMIDService) NextFree(ctx context.Context) (int, error) {
	for vmid := config.MinVMID; vmid < config.MinVMID+maxVMIDScan; vmid++ {
		_, err := s.qmClient.Status(ctx, vmid)
		if errors.Is(err, qm.ErrVMNotFound) {
			return vmid, nil
		}
		if err != nil {
			return 0, fmt.Errorf("check VMID %d: %w", vmid, err)
		}
	}
	return 0, opserror.WrapError(
		opserror.ErrInvalidVMID,
		fmt.Sprintf("no free VMID in range %d-%d", config.MinVMID, config.MinVMID+maxVMIDScan-1),
		nil,
	)
}
