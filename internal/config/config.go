package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	HTTP    HTTPConfig
	Queue   QueueConfig
	Catalog CatalogConfig
	YouTube YouTubeConfig
	Rclone  RcloneConfig
	Backoff BackoffConfig
	Log     LogConfig
}

// HTTPConfig 监控 HTTP 服务配置
type HTTPConfig struct {
	Addr string
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	// Backend 队列后端：tasq 或 redis
	Backend string
	// TasqURL tasq 队列地址（需包含 list ID）
	TasqURL string
	// RedisAddr Redis 地址（redis 后端时必填）
	RedisAddr string
	// RedisKey Redis 有序集合 key
	RedisKey string
	// RequeueOnFailure 失败后是否将任务重新入队（尽力而为）
	RequeueOnFailure bool
}

// CatalogConfig 归档站点（目录）配置
type CatalogConfig struct {
	// Backend 目录后端：ragtag 或 postgres
	Backend string
	// ArchiveBaseURL 归档站点基础 URL（ragtag 后端时必填）
	ArchiveBaseURL string
	// PostgresDSN PostgreSQL DSN（postgres 后端时必填）
	PostgresDSN string
}

// YouTubeConfig YouTube Data API 配置
type YouTubeConfig struct {
	APIKey string
	// DriveBase 产物所属存储盘标识（写入元数据）
	DriveBase string
}

// RcloneConfig rclone 上传配置
type RcloneConfig struct {
	RemoteName    string
	BaseDirectory string
}

// BackoffConfig 失败退避配置
type BackoffConfig struct {
	// Base 初始退避时长
	Base time.Duration
	// Ceiling 退避时长上限（不同部署观测到 5m/60m 两种取值，保持可调）
	Ceiling time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	Production bool
}

// Load 加载配置
func Load() (*Config, error) {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")

	// 允许从环境变量读取（优先级最高）
	v.AutomaticEnv()

	// 读取配置文件（如果存在）
	_ = v.ReadInConfig() // 忽略错误，因为可能只使用环境变量

	cfg := &Config{}

	// HTTP 配置
	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = "127.0.0.1:3383"
	}

	// 队列配置
	cfg.Queue.Backend = v.GetString("QUEUE_BACKEND")
	if cfg.Queue.Backend == "" {
		cfg.Queue.Backend = "tasq"
	}
	cfg.Queue.TasqURL = v.GetString("TASQ_URL")
	cfg.Queue.RedisAddr = v.GetString("REDIS_ADDR")
	cfg.Queue.RedisKey = v.GetString("QUEUE_KEY")
	if cfg.Queue.RedisKey == "" {
		cfg.Queue.RedisKey = "archivebot:tasks"
	}
	cfg.Queue.RequeueOnFailure = v.GetBool("REQUEUE_ON_FAILURE")

	// 目录配置
	cfg.Catalog.Backend = v.GetString("CATALOG_BACKEND")
	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = "ragtag"
	}
	cfg.Catalog.ArchiveBaseURL = v.GetString("ARCHIVE_BASE_URL")
	cfg.Catalog.PostgresDSN = v.GetString("POSTGRES_DSN")

	// YouTube 配置
	cfg.YouTube.APIKey = v.GetString("YOUTUBE_API_KEY")
	cfg.YouTube.DriveBase = v.GetString("DRIVE_BASE")

	// rclone 配置
	cfg.Rclone.RemoteName = v.GetString("RCLONE_REMOTE_NAME")
	cfg.Rclone.BaseDirectory = v.GetString("RCLONE_BASE_DIRECTORY")

	// 退避配置
	cfg.Backoff.Base = v.GetDuration("BACKOFF_BASE")
	if cfg.Backoff.Base == 0 {
		cfg.Backoff.Base = 30 * time.Second
	}
	cfg.Backoff.Ceiling = v.GetDuration("BACKOFF_CEILING")
	if cfg.Backoff.Ceiling == 0 {
		cfg.Backoff.Ceiling = 5 * time.Minute
	}

	// 日志配置
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Production = v.GetBool("PRODUCTION")

	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	switch c.Queue.Backend {
	case "tasq":
		if c.Queue.TasqURL == "" {
			return fmt.Errorf("TASQ_URL is required for tasq queue backend")
		}
	case "redis":
		if c.Queue.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis queue backend")
		}
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.Queue.Backend)
	}

	switch c.Catalog.Backend {
	case "ragtag":
		if c.Catalog.ArchiveBaseURL == "" {
			return fmt.Errorf("ARCHIVE_BASE_URL is required for ragtag catalog backend")
		}
	case "postgres":
		if c.Catalog.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for postgres catalog backend")
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.Catalog.Backend)
	}

	// 缺少 API key 时每个任务都会在补齐时间戳一步失败，直接在启动时拒绝
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required")
	}
	if c.Rclone.RemoteName == "" {
		return fmt.Errorf("RCLONE_REMOTE_NAME is required")
	}
	if c.Rclone.BaseDirectory == "" {
		return fmt.Errorf("RCLONE_BASE_DIRECTORY is required")
	}
	if c.Backoff.Base <= 0 || c.Backoff.Ceiling < c.Backoff.Base {
		return fmt.Errorf("invalid backoff configuration: base=%s ceiling=%s", c.Backoff.Base, c.Backoff.Ceiling)
	}
	return nil
}
