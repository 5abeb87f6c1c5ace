package fetch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/azhengyongqin/archivebot/internal/logger"
)

// YTDLP 主抓取器：调用 yt-dlp 下载视频本体、字幕、缩略图、评论，
// 并内嵌元数据。所有产物以 %(id)s.* 命名落在工作目录内。
type YTDLP struct {
	binPath    string
	ffmpegPath string
}

// NewYTDLP 创建主抓取器
func NewYTDLP(binPath, ffmpegPath string) *YTDLP {
	return &YTDLP{binPath: binPath, ffmpegPath: ffmpegPath}
}

// Fetch 在 dir 内抓取 url。进程被 ctx 取消时会被杀死而非脱管。
func (y *YTDLP) Fetch(ctx context.Context, url, dir string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, y.binPath,
		"-f", "bestvideo[protocol*=https]+bestaudio",
		"--ffmpeg-location", y.ffmpegPath,
		// 字幕（直播聊天由次抓取器单独负责）
		"--write-subs",
		"--sub-format", "srv3/best",
		"--sub-langs", "all,-live_chat",
		// 元数据
		"--write-thumbnail",
		"--write-comments",
		// 内嵌
		"--embed-subs",
		"--embed-metadata",
		"--embed-info-json",
		"--embed-chapters",
		// 输出
		"--merge-output-format", "webm/mp4/mkv",
		"--output", "%(id)s.%(ext)s",
		url,
	)
	cmd.Dir = dir

	logger.Debug().Str("url", url).Strs("args", cmd.Args).Msg("运行 yt-dlp")
	return run(cmd)
}

// run 执行命令并把非零退出折叠进 Outcome（只有 spawn 失败才返回 error）
func run(cmd *exec.Cmd) (Outcome, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return outcome, nil
	case errors.As(err, &exitErr):
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	default:
		return outcome, err
	}
}
