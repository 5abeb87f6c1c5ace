package deps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/archivebot/internal/workdir"
)

// fakeToolServer 返回一个可执行的 shell 脚本作为"二进制"
func fakeToolServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
}

func newTestInstaller(t *testing.T) *Installer {
	t.Helper()
	root, err := workdir.New(t.TempDir())
	require.NoError(t, err)
	return NewInstaller(root, nil)
}

func TestEnsureInstalled(t *testing.T) {
	hits := 0
	srv := fakeToolServer(t, &hits)
	defer srv.Close()

	inst := newTestInstaller(t)
	tool := Tool{
		Name:        "faketool",
		VersionArgs: []string{"--version"},
		Source:      map[string]string{runtime.GOARCH: srv.URL},
	}

	require.NoError(t, inst.EnsureInstalled(context.Background(), tool))
	assert.Equal(t, 1, hits, "首次应触发下载")

	// 二进制应已落盘且带可执行位
	info, err := os.Stat(inst.Path(tool))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "应设置可执行位")

	// 重复调用为空操作（幂等 + 进程内缓存）
	require.NoError(t, inst.EnsureInstalled(context.Background(), tool))
	assert.Equal(t, 1, hits, "已安装的工具不应重新下载")
}

func TestEnsureInstalledUnsupportedArch(t *testing.T) {
	inst := newTestInstaller(t)
	tool := Tool{
		Name:        "faketool",
		VersionArgs: []string{"--version"},
		Source:      map[string]string{}, // 当前架构无下载源
	}

	err := inst.EnsureInstalled(context.Background(), tool)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedArch)
}

func TestEnsureAll(t *testing.T) {
	hits := 0
	srv := fakeToolServer(t, &hits)
	defer srv.Close()

	inst := newTestInstaller(t)
	a := Tool{Name: "tool-a", VersionArgs: []string{"--version"}, Source: map[string]string{runtime.GOARCH: srv.URL}}
	b := Tool{Name: "tool-b", VersionArgs: []string{"--version"}, Source: map[string]string{runtime.GOARCH: srv.URL}}

	require.NoError(t, inst.EnsureAll(context.Background(), a, b))
	assert.Equal(t, 2, hits)

	_, err := os.Stat(inst.Path(a))
	assert.NoError(t, err)
	_, err = os.Stat(inst.Path(b))
	assert.NoError(t, err)
}

func TestEnsureAllPropagatesError(t *testing.T) {
	hits := 0
	srv := fakeToolServer(t, &hits)
	defer srv.Close()

	inst := newTestInstaller(t)
	good := Tool{Name: "good", VersionArgs: []string{"--version"}, Source: map[string]string{runtime.GOARCH: srv.URL}}
	bad := Tool{Name: "bad", VersionArgs: []string{"--version"}, Source: map[string]string{}}

	err := inst.EnsureAll(context.Background(), good, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedArch)
}
