package service

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository"
	"github.com/stretchr/testify/require"
)

// setupTestRepo 创建使用临时数据库的 Repository
func setupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "pvetpl-test.db")
	repo, err := repository.New(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

// newTestPrompter 创建从固定输入读取的 Prompter
func newTestPrompter(input string) *prompt.Prompter {
	return prompt.NewWithStreams(strings.NewReader(input), &bytes.Buffer{})
}
