package uploader

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/azhengyongqin/archivebot/internal/logger"
)

// Rclone rclone 上传器：把工作目录整体拷贝到冷存储远端。
type Rclone struct {
	binPath       string
	remoteName    string
	baseDirectory string
}

// NewRclone 创建上传器
func NewRclone(binPath, remoteName, baseDirectory string) *Rclone {
	return &Rclone{
		binPath:       binPath,
		remoteName:    remoteName,
		baseDirectory: baseDirectory,
	}
}

// Upload 执行 rclone copy <dir> <remote>:<base>/<target>
func (r *Rclone) Upload(ctx context.Context, dir, target string) error {
	dest := fmt.Sprintf("%s:%s/%s",
		r.remoteName,
		strings.Trim(r.baseDirectory, "/"),
		strings.Trim(target, "/"),
	)

	cmd := exec.CommandContext(ctx, r.binPath, "copy", dir, dest)
	out, err := cmd.CombinedOutput()
	logger.Debug().Str("dest", dest).Str("output", string(out)).Msg("rclone 输出")
	if err != nil {
		return fmt.Errorf("rclone copy to %s: %w: %s", dest, err, string(out))
	}
	return nil
}
