package deps

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/metrics"
	"github.com/azhengyongqin/archivebot/internal/workdir"
)

// ErrUnsupportedArch 当前 CPU 架构没有可用的下载源（不可重试）
var ErrUnsupportedArch = errors.New("unsupported cpu architecture")

// Tool 外部工具描述：二进制名、版本探测参数、按架构划分的下载源。
// Source 与 Resolve 二选一：静态 URL 或通过 GitHub release 动态解析。
type Tool struct {
	Name        string
	VersionArgs []string
	// Source GOARCH -> 静态下载 URL
	Source map[string]string
	// Resolve 动态解析下载 URL（如 rclone 走 GitHub latest release）
	Resolve func(ctx context.Context, gh *GitHubClient) (string, error)
	// Unzip 下载产物为 zip 包，需要解出与工具同名的成员
	Unzip bool
}

// Installer 依赖安装器：保证外部工具存在、可执行、且按需自安装。
// 安装幂等（重复调用已安装的工具为空操作），探测结果进程内缓存。
type Installer struct {
	root   *workdir.CacheRoot
	client *http.Client
	gh     *GitHubClient

	mu        sync.Mutex
	installed map[string]bool
}

// NewInstaller 创建安装器
func NewInstaller(root *workdir.CacheRoot, client *http.Client) *Installer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Installer{
		root:      root,
		client:    client,
		gh:        NewGitHubClient(client),
		installed: make(map[string]bool),
	}
}

// Path 返回工具二进制的落盘路径
func (i *Installer) Path(tool Tool) string {
	return i.root.ToolPath(tool.Name)
}

// EnsureInstalled 确保单个工具已安装。先跑版本探测，探测失败才执行安装。
func (i *Installer) EnsureInstalled(ctx context.Context, tool Tool) error {
	i.mu.Lock()
	if i.installed[tool.Name] {
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()

	if i.probe(ctx, tool) {
		i.markInstalled(tool.Name)
		return nil
	}

	if err := i.install(ctx, tool); err != nil {
		metrics.RecordToolInstall(tool.Name, "failure")
		return fmt.Errorf("install %s: %w", tool.Name, err)
	}

	if !i.probe(ctx, tool) {
		metrics.RecordToolInstall(tool.Name, "failure")
		return fmt.Errorf("install %s: binary does not execute after install", tool.Name)
	}

	metrics.RecordToolInstall(tool.Name, "success")
	i.markInstalled(tool.Name)
	return nil
}

// EnsureAll 并发安装多个工具（fan-out 后 join 全部结果）
func (i *Installer) EnsureAll(ctx context.Context, tools ...Tool) error {
	errc := make(chan error, len(tools))
	for _, tool := range tools {
		go func(tool Tool) {
			errc <- i.EnsureInstalled(ctx, tool)
		}(tool)
	}

	var firstErr error
	for range tools {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (i *Installer) markInstalled(name string) {
	i.mu.Lock()
	i.installed[name] = true
	i.mu.Unlock()
}

// probe 调用工具自身的版本参数验证其可执行
func (i *Installer) probe(ctx context.Context, tool Tool) bool {
	cmd := exec.CommandContext(ctx, i.Path(tool), tool.VersionArgs...)
	return cmd.Run() == nil
}

// install 解析下载源并落盘
func (i *Installer) install(ctx context.Context, tool Tool) error {
	log := logger.WithTool(tool.Name)
	log.Info().Msg("安装外部工具")

	url, err := i.resolveURL(ctx, tool)
	if err != nil {
		return err
	}

	if tool.Unzip {
		return i.installFromZip(ctx, tool, url)
	}
	return i.installBinary(ctx, tool, url)
}

func (i *Installer) resolveURL(ctx context.Context, tool Tool) (string, error) {
	if tool.Resolve != nil {
		return tool.Resolve(ctx, i.gh)
	}
	url, ok := tool.Source[runtime.GOARCH]
	if !ok {
		return "", fmt.Errorf("%w: %s has no source for %s", ErrUnsupportedArch, tool.Name, runtime.GOARCH)
	}
	return url, nil
}

// installBinary 将远端文件流式写入缓存目录并置可执行位
func (i *Installer) installBinary(ctx context.Context, tool Tool, url string) error {
	body, err := i.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	dest, err := os.Create(i.Path(tool))
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, body); err != nil {
		return fmt.Errorf("write binary: %w", err)
	}
	return dest.Chmod(0o755)
}

// installFromZip 下载 zip 包并解出与工具同名的成员
func (i *Installer) installFromZip(ctx context.Context, tool Tool, url string) error {
	body, err := i.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	zipfile, err := os.CreateTemp(i.root.Path(), tool.Name+"-*.zip")
	if err != nil {
		return fmt.Errorf("create temp zip: %w", err)
	}
	defer os.Remove(zipfile.Name())
	defer zipfile.Close()

	size, err := io.Copy(zipfile, body)
	if err != nil {
		return fmt.Errorf("write temp zip: %w", err)
	}

	archive, err := zip.NewReader(zipfile, size)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	var member *zip.File
	for _, f := range archive.File {
		if strings.HasSuffix(f.Name, "/"+tool.Name) || f.Name == tool.Name {
			member = f
			break
		}
	}
	if member == nil {
		return fmt.Errorf("zip does not contain %s", tool.Name)
	}

	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("open zip member: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(i.Path(tool))
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}
	return dest.Chmod(0o755)
}

func (i *Installer) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
