package model

// ArchiverState 归档器状态枚举（用于事件流/指标展示）。
// 约定：
// - idle: 空闲（上一个任务已结束，等待下一轮）
// - starting: 已开始取任务
// - downloading: 正在下载视频及附属产物
// - uploading: 正在上传到冷存储
// - failure_backoff: 本轮失败，处于退避等待
type ArchiverState string

const (
	StateIdle           ArchiverState = "idle"
	StateStarting       ArchiverState = "starting"
	StateDownloading    ArchiverState = "downloading"
	StateUploading      ArchiverState = "uploading"
	StateFailureBackoff ArchiverState = "failure_backoff"
)

// States 全部状态，按 /metrics 输出顺序排列。
var States = []ArchiverState{
	StateIdle,
	StateStarting,
	StateDownloading,
	StateUploading,
	StateFailureBackoff,
}

func (s ArchiverState) Valid() bool {
	switch s {
	case StateIdle, StateStarting, StateDownloading, StateUploading, StateFailureBackoff:
		return true
	default:
		return false
	}
}

func (s ArchiverState) String() string {
	return string(s)
}
