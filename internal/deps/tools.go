package deps

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// YTDLP yt-dlp：官方 release 提供的静态单文件二进制
var YTDLP = Tool{
	Name:        "yt-dlp",
	VersionArgs: []string{"--version"},
	Source: map[string]string{
		"amd64": "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux",
		"arm64": "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64",
	},
}

// FFmpeg ffmpeg：eugeneware/ffmpeg-static 的静态构建
var FFmpeg = Tool{
	Name:        "ffmpeg",
	VersionArgs: []string{"-version"},
	Source: map[string]string{
		"amd64": "https://github.com/eugeneware/ffmpeg-static/releases/download/b5.0.1/linux-x64",
		"arm64": "https://github.com/eugeneware/ffmpeg-static/releases/download/b5.0.1/linux-arm64",
	},
}

// Rclone rclone：通过 GitHub latest release 解析对应架构的 zip 包
var Rclone = Tool{
	Name:        "rclone",
	VersionArgs: []string{"--version"},
	Unzip:       true,
	Resolve: func(ctx context.Context, gh *GitHubClient) (string, error) {
		suffix, ok := map[string]string{
			"amd64": "linux-amd64.zip",
			"arm64": "linux-arm64.zip",
		}[runtime.GOARCH]
		if !ok {
			return "", fmt.Errorf("%w: rclone has no asset for %s", ErrUnsupportedArch, runtime.GOARCH)
		}

		release, err := gh.LatestRelease(ctx, "rclone/rclone")
		if err != nil {
			return "", err
		}
		url, ok := release.AssetURL(func(name string) bool {
			return strings.HasSuffix(name, suffix)
		})
		if !ok {
			return "", fmt.Errorf("rclone release %s has no asset matching %s", release.TagName, suffix)
		}
		return url, nil
	},
}
