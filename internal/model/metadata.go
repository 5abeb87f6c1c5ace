package model

// Metadata 归档元数据（注册到归档站点时序列化）。
// 一次成功抓取后构建，此后不可变。
type Metadata struct {
	VideoID           string              `json:"video_id"`
	ChannelName       string              `json:"channel_name"`
	ChannelID         string              `json:"channel_id"`
	UploadDate        string              `json:"upload_date"` // YYYY-MM-DD
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Duration          int64               `json:"duration"` // 秒
	Width             int                 `json:"width"`
	Height            int                 `json:"height"`
	FPS               int                 `json:"fps"`
	FormatID          string              `json:"format_id"`
	ViewCount         int64               `json:"view_count"`
	LikeCount         int64               `json:"like_count"`
	DislikeCount      int64               `json:"dislike_count"` // 不可得时为 -1
	Files             []MetadataFileEntry `json:"files"`
	DriveBase         string              `json:"drive_base"`
	ArchivedTimestamp string              `json:"archived_timestamp"` // RFC-3339
	Timestamps        *MetadataTimestamps `json:"timestamps,omitempty"`
}

// MetadataFileEntry 工作目录内单个产物文件的名称与大小。
type MetadataFileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// MetadataTimestamps 发布/直播时间戳（来自 YouTube Data API，字段均可缺省）。
type MetadataTimestamps struct {
	ActualStartTime    *string `json:"actualStartTime,omitempty"`
	PublishedAt        *string `json:"publishedAt,omitempty"`
	ScheduledStartTime *string `json:"scheduledStartTime,omitempty"`
	ActualEndTime      *string `json:"actualEndTime,omitempty"`
}
