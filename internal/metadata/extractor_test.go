package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInfoJSON = `{
	"id": "dQw4w9WgXcQ",
	"uploader": "Rick Astley",
	"channel_id": "UCuAXFkgsw1L7xaCfnd5JJOw",
	"upload_date": "20081125",
	"title": "Never Gonna Give You Up",
	"description": "official video",
	"duration": 212,
	"width": 1280,
	"height": 720,
	"fps": 30,
	"format_id": "22",
	"view_count": 2250000000,
	"like_count": 999999
}`

const testVideosResponse = `{
	"items": [
		{
			"snippet": {"publishedAt": "2020-01-01T00:00:00Z"},
			"liveStreamingDetails": {
				"actualStartTime": "1111-01-01T00:00:00Z",
				"actualEndTime": "2222-01-01T00:00:00Z",
				"scheduledStartTime": "3333-01-01T00:00:00Z"
			}
		}
	]
}`

func newYTServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testVideosResponse))
	}))
}

func TestExtract(t *testing.T) {
	srv := newYTServer(t)
	defer srv.Close()

	// 构造抓取产物目录
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.info.json"), []byte(testInfoJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.webm"), make([]byte, 1024), 0o644))

	e := NewExtractor("test-api-key", "drive-a", nil)
	e.apiURL = srv.URL

	meta, err := e.Extract(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", meta.VideoID)
	assert.Equal(t, "Rick Astley", meta.ChannelName)
	assert.Equal(t, "UCuAXFkgsw1L7xaCfnd5JJOw", meta.ChannelID)
	assert.Equal(t, "2008-11-25", meta.UploadDate, "上传日期应转为 YYYY-MM-DD")
	assert.Equal(t, int64(212), meta.Duration)
	assert.Equal(t, 1280, meta.Width)
	assert.Equal(t, 720, meta.Height)
	assert.Equal(t, 30, meta.FPS)
	assert.Equal(t, "22", meta.FormatID)
	assert.Equal(t, int64(-1), meta.DislikeCount, "缺省的 dislike_count 应为 -1")
	assert.Equal(t, "drive-a", meta.DriveBase)
	assert.NotEmpty(t, meta.ArchivedTimestamp)

	// 文件清单应包含目录下所有文件
	require.Len(t, meta.Files, 2)
	names := []string{meta.Files[0].Name, meta.Files[1].Name}
	assert.Contains(t, names, "dQw4w9WgXcQ.info.json")
	assert.Contains(t, names, "dQw4w9WgXcQ.webm")

	// 时间戳
	require.NotNil(t, meta.Timestamps)
	require.NotNil(t, meta.Timestamps.PublishedAt)
	assert.Equal(t, "2020-01-01T00:00:00Z", *meta.Timestamps.PublishedAt)
	require.NotNil(t, meta.Timestamps.ActualStartTime)
	assert.Equal(t, "1111-01-01T00:00:00Z", *meta.Timestamps.ActualStartTime)
}

func TestExtractMissingInfoJSON(t *testing.T) {
	srv := newYTServer(t)
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.webm"), []byte("x"), 0o644))

	e := NewExtractor("test-api-key", "drive-a", nil)
	e.apiURL = srv.URL

	_, err := e.Extract(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "info.json")
}

func TestFixUploadDate(t *testing.T) {
	assert.Equal(t, "1984-01-02", fixUploadDate("19840102"))
	assert.Equal(t, "oops", fixUploadDate("oops"), "非 8 位输入原样返回")
}
