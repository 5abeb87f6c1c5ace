package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// 设置测试环境变量
	os.Setenv("TASQ_URL", "https://tasq.example.com/list/archive")
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REQUEUE_ON_FAILURE", "true")
	defer func() {
		os.Unsetenv("TASQ_URL")
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("REQUEUE_ON_FAILURE")
	}()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "https://tasq.example.com/list/archive", cfg.Queue.TasqURL)
	assert.True(t, cfg.Queue.RequeueOnFailure)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// 验证默认值
	assert.Equal(t, "127.0.0.1:3383", cfg.HTTP.Addr)
	assert.Equal(t, "tasq", cfg.Queue.Backend)
	assert.Equal(t, "ragtag", cfg.Catalog.Backend)
	assert.Equal(t, "archivebot:tasks", cfg.Queue.RedisKey)
	assert.Equal(t, 30*time.Second, cfg.Backoff.Base)
	assert.Equal(t, 5*time.Minute, cfg.Backoff.Ceiling)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Queue.RequeueOnFailure)
}

func TestLoadBackoffOverride(t *testing.T) {
	os.Setenv("BACKOFF_BASE", "10s")
	os.Setenv("BACKOFF_CEILING", "60m")
	defer func() {
		os.Unsetenv("BACKOFF_BASE")
		os.Unsetenv("BACKOFF_CEILING")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Backoff.Base)
	assert.Equal(t, 60*time.Minute, cfg.Backoff.Ceiling)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Queue:   QueueConfig{Backend: "tasq", TasqURL: "https://tasq.example.com/list/archive"},
			Catalog: CatalogConfig{Backend: "ragtag", ArchiveBaseURL: "https://archive.example.com"},
			YouTube: YouTubeConfig{APIKey: "test-api-key"},
			Rclone:  RcloneConfig{RemoteName: "gdrive", BaseDirectory: "archive"},
			Backoff: BackoffConfig{Base: 30 * time.Second, Ceiling: 5 * time.Minute},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantError: false},
		{name: "missing tasq url", mutate: func(c *Config) { c.Queue.TasqURL = "" }, wantError: true},
		{name: "unknown queue backend", mutate: func(c *Config) { c.Queue.Backend = "rabbitmq" }, wantError: true},
		{
			name: "redis backend requires addr",
			mutate: func(c *Config) {
				c.Queue.Backend = "redis"
				c.Queue.RedisAddr = ""
			},
			wantError: true,
		},
		{
			name: "postgres backend requires dsn",
			mutate: func(c *Config) {
				c.Catalog.Backend = "postgres"
				c.Catalog.PostgresDSN = ""
			},
			wantError: true,
		},
		{name: "missing youtube api key", mutate: func(c *Config) { c.YouTube.APIKey = "" }, wantError: true},
		{name: "missing rclone remote", mutate: func(c *Config) { c.Rclone.RemoteName = "" }, wantError: true},
		{
			name: "ceiling below base",
			mutate: func(c *Config) {
				c.Backoff.Ceiling = time.Second
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
