package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/azhengyongqin/archivebot/internal/model"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivebot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archivebot_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 归档器状态指标：每个状态一条序列，当前状态为 1，其余为 0
	ArchiverState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "archivebot_state",
			Help: "Current archiver state (1 for the active state)",
		},
		[]string{"state"},
	)

	// 缓存目录（工作集）大小
	CacheDirSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivebot_cache_dir_size_bytes",
			Help: "Total size of the process cache directory in bytes",
		},
	)

	// 任务指标
	TasksCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivebot_tasks_completed_total",
			Help: "Total number of archival tasks completed",
		},
		[]string{"result"}, // success / skipped / failure
	)

	TaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archivebot_task_duration_seconds",
			Help:    "Archival task duration in seconds",
			Buckets: []float64{1, 5, 15, 60, 120, 300, 600, 1800, 3600},
		},
	)

	// 依赖安装指标
	ToolInstallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivebot_tool_installs_total",
			Help: "Total number of external tool installations",
		},
		[]string{"tool", "status"},
	)

	// 退避指标
	BackoffSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archivebot_backoff_seconds",
			Help: "Current retry backoff delay in seconds",
		},
	)

	// 错误指标
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivebot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)
)

// RecordHTTPRequest 记录 HTTP 请求
func RecordHTTPRequest(method, path string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// SetArchiverState 更新状态序列（当前状态置 1，其余置 0）
func SetArchiverState(current model.ArchiverState) {
	for _, s := range model.States {
		v := 0.0
		if s == current {
			v = 1.0
		}
		ArchiverState.WithLabelValues(string(s)).Set(v)
	}
}

// UpdateCacheDirSize 更新缓存目录大小
func UpdateCacheDirSize(bytes int64) {
	CacheDirSizeBytes.Set(float64(bytes))
}

// RecordTaskCompleted 记录任务完成
func RecordTaskCompleted(result string, duration float64) {
	TasksCompletedTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		TaskDuration.Observe(duration)
	}
}

// RecordToolInstall 记录外部工具安装
func RecordToolInstall(tool, status string) {
	ToolInstallsTotal.WithLabelValues(tool, status).Inc()
}

// UpdateBackoff 更新当前退避时长
func UpdateBackoff(seconds float64) {
	BackoffSeconds.Set(seconds)
}

// RecordError 记录错误
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// statusClass 将状态码归类为 2xx/3xx/4xx/5xx
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
