package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CacheRoot 进程级缓存目录句柄。生命周期覆盖整个进程：
// 首次创建后不再清理，安装器与抓取器共享（写入幂等，覆盖即可）。
type CacheRoot struct {
	path string
}

var (
	defaultRoot *CacheRoot
	defaultOnce sync.Once
	defaultErr  error
)

// Default 返回进程默认缓存目录（<user cache dir>/archivebot），首次调用时创建。
func Default() (*CacheRoot, error) {
	defaultOnce.Do(func() {
		base, err := os.UserCacheDir()
		if err != nil {
			defaultErr = fmt.Errorf("locate user cache dir: %w", err)
			return
		}
		defaultRoot, defaultErr = New(filepath.Join(base, "archivebot"))
	})
	return defaultRoot, defaultErr
}

// New 在指定路径创建缓存目录句柄（目录不存在则创建）。
func New(path string) (*CacheRoot, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CacheRoot{path: path}, nil
}

// Path 返回缓存目录绝对路径
func (r *CacheRoot) Path() string {
	return r.path
}

// ToolPath 返回某个外部工具二进制在缓存目录内的落盘路径
func (r *CacheRoot) ToolPath(name string) string {
	return filepath.Join(r.path, name)
}

// NewScratch 在缓存目录下创建一个任务私有的临时工作目录。
// 调用方必须在任务结束时（无论成败）调用 cleanup。
func (r *CacheRoot) NewScratch() (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp(r.path, "task-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup = func() {
		_ = os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// Size 递归统计缓存目录占用字节数。可能较慢，调用方负责放到主路径之外执行。
func (r *CacheRoot) Size() (int64, error) {
	return DirSize(r.path)
}

// DirSize 递归统计目录下所有文件大小之和
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}
