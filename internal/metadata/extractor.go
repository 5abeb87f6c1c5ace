package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/azhengyongqin/archivebot/internal/model"
)

// infoJSON yt-dlp 写出的 *.info.json 中我们关心的字段
type infoJSON struct {
	ID           string  `json:"id"`
	Uploader     string  `json:"uploader"`
	ChannelID    string  `json:"channel_id"`
	UploadDate   string  `json:"upload_date"` // YYYYMMDD
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Duration     int64   `json:"duration"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	FPS          float64 `json:"fps"`
	FormatID     string  `json:"format_id"`
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	DislikeCount *int64  `json:"dislike_count"`
}

// Extractor 从抓取产物构建归档元数据：
// 扫描工作目录文件清单 + 解析 info.json + 调用 YouTube Data API 补齐时间戳。
type Extractor struct {
	apiKey    string
	apiURL    string
	client    *http.Client
	driveBase string
}

// NewExtractor 创建元数据抽取器（client 为 nil 时使用默认）
func NewExtractor(apiKey, driveBase string, client *http.Client) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{
		apiKey:    apiKey,
		apiURL:    "https://youtube.googleapis.com",
		client:    client,
		driveBase: driveBase,
	}
}

// Extract 从工作目录构建元数据。info.json 缺失或损坏视为抽取失败。
func (e *Extractor) Extract(ctx context.Context, dir string) (*model.Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read workdir: %w", err)
	}

	// 记录所有产物文件的名称与大小，同时定位 info.json
	var files []model.MetadataFileEntry
	var infoPath string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, model.MetadataFileEntry{
			Name: entry.Name(),
			Size: info.Size(),
		})
		if strings.HasSuffix(entry.Name(), ".info.json") {
			infoPath = filepath.Join(dir, entry.Name())
		}
	}
	if infoPath == "" {
		return nil, fmt.Errorf("no info.json in workdir %s", dir)
	}

	raw, err := os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("read info.json: %w", err)
	}
	var info infoJSON
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode info.json: %w", err)
	}

	timestamps, err := e.fetchTimestamps(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch timestamps: %w", err)
	}

	dislikes := int64(-1)
	if info.DislikeCount != nil {
		dislikes = *info.DislikeCount
	}

	return &model.Metadata{
		VideoID:           info.ID,
		ChannelName:       info.Uploader,
		ChannelID:         info.ChannelID,
		UploadDate:        fixUploadDate(info.UploadDate),
		Title:             info.Title,
		Description:       info.Description,
		Duration:          info.Duration,
		Width:             info.Width,
		Height:            info.Height,
		FPS:               int(info.FPS),
		FormatID:          info.FormatID,
		ViewCount:         info.ViewCount,
		LikeCount:         info.LikeCount,
		DislikeCount:      dislikes,
		Files:             files,
		DriveBase:         e.driveBase,
		ArchivedTimestamp: time.Now().UTC().Format(time.RFC3339),
		Timestamps:        timestamps,
	}, nil
}

type videosResponse struct {
	Items []struct {
		Snippet *struct {
			PublishedAt *string `json:"publishedAt"`
		} `json:"snippet"`
		LiveStreamingDetails *struct {
			ScheduledStartTime *string `json:"scheduledStartTime"`
			ActualStartTime    *string `json:"actualStartTime"`
			ActualEndTime      *string `json:"actualEndTime"`
		} `json:"liveStreamingDetails"`
	} `json:"items"`
}

// fetchTimestamps 从 YouTube Data API 获取发布/直播时间戳
func (e *Extractor) fetchTimestamps(ctx context.Context, id string) (*model.MetadataTimestamps, error) {
	u := fmt.Sprintf(
		"%s/youtube/v3/videos?part=%s&id=%s&key=%s",
		e.apiURL,
		url.QueryEscape("snippet,liveStreamingDetails"),
		url.QueryEscape(id),
		url.QueryEscape(e.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Items) == 0 {
		return nil, fmt.Errorf("no items in response for %s", id)
	}

	item := body.Items[0]
	ts := &model.MetadataTimestamps{}
	if item.Snippet != nil {
		ts.PublishedAt = item.Snippet.PublishedAt
	}
	if item.LiveStreamingDetails != nil {
		ts.ScheduledStartTime = item.LiveStreamingDetails.ScheduledStartTime
		ts.ActualStartTime = item.LiveStreamingDetails.ActualStartTime
		ts.ActualEndTime = item.LiveStreamingDetails.ActualEndTime
	}
	return ts, nil
}

// fixUploadDate 将 YYYYMMDD 转为 YYYY-MM-DD
func fixUploadDate(date string) string {
	if len(date) != 8 {
		return date
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:8]
}
