// Package service 提供业务逻辑层的服务实现
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/pkg/cloudinit"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Credentials 收集完成的 cloud-init 凭据
// PasswordHash 和 SSHKeyPath 都可能为空，但不会同时为空（交互模式会至少要一个）
type Credentials struct {
	User         string
	PasswordHash string // bcrypt hash，空表示不设置密码
	SSHKeyPath   string // 公钥文件路径，空表示不注入公钥
}

// CredentialService 凭据收集服务
type CredentialService struct {
	prompter *prompt.Prompter
}

// NewCredentialService 创建新的 Credential Service
func NewCredentialService(prompter *prompt.Prompter) *CredentialService {
	return &CredentialService{
		prompter: prompter,
	}
}

// Collect 收集 cloud-init 用户名、密码和 SSH 公钥
// password 非空时直接 hash，否则交互模式下询问两次并比对
func (s *CredentialService) Collect(ctx context.Context, user, password, sshKeyPath string, assumeYes bool) (*Credentials, error) {
	logger := zerolog.Ctx(ctx)

	creds := &Credentials{User: user}

	if sshKeyPath != "" {
		if err := s.validateSSHKey(sshKeyPath); err != nil {
			return nil, err
		}
		creds.SSHKeyPath = sshKeyPath
		logger.Info().
			Str("path", sshKeyPath).
			Msg("SSH public key validated")
	}

	if password == "" && !assumeYes {
		entered, err := s.askPassword()
		if err != nil {
			return nil, err
		}
		password = entered
	}

	if password != "" {
		hash, err := cloudinit.HashPassword(password)
		if err != nil {
			return nil, opserror.WrapError(opserror.ErrInternalError, "Failed to hash password", err)
		}
		creds.PasswordHash = hash
	}

	if creds.PasswordHash == "" && creds.SSHKeyPath == "" {
		logger.Warn().Msg("No password and no SSH key configured, clones will only be reachable via console")
	}

	logger.Info().
		Str("user", user).
		Bool("has_password", creds.PasswordHash != "").
		Bool("has_ssh_key", creds.SSHKeyPath != "").
		Msg("Credentials collected")
	return creds, nil
}

// askPassword 交互式询问密码，输入两次比对
// 直接回车表示不设置密码
func (s *CredentialService) askPassword() (string, error) {
	password, err := s.prompter.Password("Enter cloud-init password (empty to skip)")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return "", nil
	}

	confirm, err := s.prompter.Password("Confirm password")
	if err != nil {
		return "", fmt.Errorf("read password confirmation: %w", err)
	}
	if password != confirm {
		return "", opserror.WrapError(
			opserror.ErrPasswordMismatch,
			"passwords do not match",
			nil,
		)
	}
	return password, nil
}

// validateSSHKey 检查公钥文件存在且是合法的 authorized_keys 格式
func (s *CredentialService) validateSSHKey(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return opserror.WrapError(
			opserror.ErrSSHKeyNotFound,
			fmt.Sprintf("SSH public key file %q not found", path),
			err,
		)
	}

	if _, _, _, _, err := ssh.ParseAuthorizedKey(data); err != nil {
		return opserror.WrapError(
			opserror.ErrSSHKeyNotFound,
			fmt.Sprintf("file %q is not a valid SSH public key", path),
			err,
		)
	}
	return nil
}
