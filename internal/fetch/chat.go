package fetch

import (
	"context"
	"os/exec"

	"github.com/azhengyongqin/archivebot/internal/logger"
)

// LiveChat 次抓取器：单独抓取直播聊天回放（尽力而为的附属产物）。
// 输出 %(id)s.live_chat.json，与主抓取的文件名模式不重叠。
type LiveChat struct {
	binPath string
}

// NewLiveChat 创建次抓取器（复用 yt-dlp 二进制）
func NewLiveChat(binPath string) *LiveChat {
	return &LiveChat{binPath: binPath}
}

// Fetch 在 dir 内抓取 url 的聊天回放
func (c *LiveChat) Fetch(ctx context.Context, url, dir string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, c.binPath,
		"--skip-download",
		"--write-subs",
		"--sub-langs", "live_chat",
		"--output", "%(id)s.%(ext)s",
		url,
	)
	cmd.Dir = dir

	logger.Debug().Str("url", url).Msg("抓取直播聊天回放")
	return run(cmd)
}
