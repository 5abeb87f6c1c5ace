package workdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScratch(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	dir, cleanup, err := root.NewScratch()
	require.NoError(t, err)

	// 工作目录应该位于缓存目录之下
	assert.True(t, filepath.Dir(dir) == root.Path(), "scratch 应位于缓存目录内")

	_, err = os.Stat(dir)
	assert.NoError(t, err, "scratch 目录应该存在")

	// 清理后目录应该消失
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0o644))
	cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "cleanup 后目录应该被删除")
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 100), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.bin"), make([]byte, 50), 0o644))

	size, err := DirSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(150), size, "应递归统计子目录")
}

func TestToolPath(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root.Path(), "yt-dlp"), root.ToolPath("yt-dlp"))
}
