package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/azhengyongqin/archivebot/internal/archiver"
	"github.com/azhengyongqin/archivebot/internal/catalog"
	"github.com/azhengyongqin/archivebot/internal/config"
	"github.com/azhengyongqin/archivebot/internal/deps"
	"github.com/azhengyongqin/archivebot/internal/fetch"
	"github.com/azhengyongqin/archivebot/internal/healthcheck"
	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/metadata"
	"github.com/azhengyongqin/archivebot/internal/observe"
	"github.com/azhengyongqin/archivebot/internal/queue"
	httpserver "github.com/azhengyongqin/archivebot/internal/server"
	"github.com/azhengyongqin/archivebot/internal/uploader"
	"github.com/azhengyongqin/archivebot/internal/workdir"
)

// toolEnsurer 把安装器适配为流水线需要的工具保证接口
type toolEnsurer struct {
	installer *deps.Installer
}

func (t *toolEnsurer) Ensure(ctx context.Context) error {
	return t.installer.EnsureAll(ctx, deps.YTDLP, deps.FFmpeg, deps.Rclone)
}

func main() {
	_ = loadEnvFile()

	// 先用开发模式日志兜底，配置就绪后再按配置重建
	if err := logger.Init(false); err != nil {
		os.Exit(1)
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatal().Err(err).Msg("加载配置失败")
	}

	// 按配置重建结构化日志
	if err := logger.Init(cfg.Log.Production); err != nil {
		logger.L.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer logger.Sync()
	logger.SetLevel(cfg.Log.Level)

	// 验证配置
	if err := cfg.Validate(); err != nil {
		logger.L.Fatal().Err(err).Msg("配置验证失败")
	}

	logger.L.Info().
		Str("http", cfg.HTTP.Addr).
		Str("queue_backend", cfg.Queue.Backend).
		Str("catalog_backend", cfg.Catalog.Backend).
		Msg("archivebot 启动")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 进程缓存目录：外部工具与任务工作目录都落在这里
	root, err := workdir.Default()
	if err != nil {
		logger.L.Fatal().Err(err).Msg("初始化缓存目录失败")
	}

	// 任务队列
	var q queue.TaskQueue
	switch cfg.Queue.Backend {
	case "redis":
		redisAddr := cfg.Queue.RedisAddr
		// 确保 Redis 地址格式正确
		if !strings.HasPrefix(redisAddr, "redis://") && !strings.HasPrefix(redisAddr, "rediss://") {
			redisAddr = "redis://" + redisAddr + "/0"
		}
		rq, err := queue.NewRedisQueue(redisAddr, cfg.Queue.RedisKey)
		if err != nil {
			logger.L.Fatal().Err(err).Msg("连接 Redis 队列失败")
		}
		q = rq
	default:
		q = queue.NewTasq(cfg.Queue.TasqURL, nil)
	}

	// 归档站点目录
	var (
		site   archiver.ArchiveSite
		pgPool *pgxpool.Pool
	)
	switch cfg.Catalog.Backend {
	case "postgres":
		pg, err := catalog.NewPostgres(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			logger.L.Fatal().Err(err).Msg("初始化 Postgres 目录失败")
		}
		defer pg.Close()
		site = pg

		// 就绪检查用独立的 pgx 连接池
		pgPool, err = pgxpool.New(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			logger.L.Fatal().Err(err).Msg("创建 pgx 连接池失败")
		}
		defer pgPool.Close()
	default:
		rt, err := catalog.NewRagtag(cfg.Catalog.ArchiveBaseURL, nil)
		if err != nil {
			logger.L.Fatal().Err(err).Msg("初始化归档站点客户端失败")
		}
		site = rt
	}

	// 外部工具与流水线各环节
	installer := deps.NewInstaller(root, nil)
	ytdlpPath := installer.Path(deps.YTDLP)

	coordinator := fetch.NewCoordinator(
		fetch.NewYTDLP(ytdlpPath, installer.Path(deps.FFmpeg)),
		fetch.NewLiveChat(ytdlpPath),
	)
	extractor := metadata.NewExtractor(cfg.YouTube.APIKey, cfg.YouTube.DriveBase, nil)
	rclone := uploader.NewRclone(installer.Path(deps.Rclone), cfg.Rclone.RemoteName, cfg.Rclone.BaseDirectory)

	// 状态接收端
	sink := observe.NewSink(root)
	go sink.Run(ctx)

	arch := archiver.New(
		q,
		site,
		extractor,
		rclone,
		coordinator,
		&toolEnsurer{installer: installer},
		root,
		sink,
		cfg.Queue.RequeueOnFailure,
	)

	// 运维 HTTP 服务
	healthChecker := healthcheck.NewHealthChecker(pgPool, q)
	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			Sink:          sink,
			HealthChecker: healthChecker,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.L.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP 服务监听")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.Fatal().Err(err).Msg("HTTP 服务错误")
		}
	}()

	// 归档循环
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		arch.RunForever(ctx, archiver.BackoffConfig{
			Base:    cfg.Backoff.Base,
			Ceiling: cfg.Backoff.Ceiling,
		})
	}()

	<-ctx.Done()
	logger.L.Info().Msg("收到关停信号")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	// 等在途任务走完当前迭代并释放工作目录
	wg.Wait()
	logger.L.Info().Msg("服务已优雅关闭")
}

// loadEnvFile 尝试从工作目录或上级目录加载 .env 文件
func loadEnvFile() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return godotenv.Load(path)
		}
	}
	return nil
}
