package archiver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/archivebot/internal/catalog"
	"github.com/azhengyongqin/archivebot/internal/fetch"
	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/metrics"
	"github.com/azhengyongqin/archivebot/internal/model"
	"github.com/azhengyongqin/archivebot/internal/queue"
	"github.com/azhengyongqin/archivebot/internal/workdir"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// ArchiveSite 归档站点（目录）抽象：幂等检查 + 注册
type ArchiveSite interface {
	IsArchived(ctx context.Context, id string) (bool, error)
	Archive(ctx context.Context, id string, metadata *model.Metadata) error
}

// MetadataExtractor 元数据抽取抽象
type MetadataExtractor interface {
	Extract(ctx context.Context, dir string) (*model.Metadata, error)
}

// Uploader 冷存储上传抽象
type Uploader interface {
	Upload(ctx context.Context, dir, target string) error
}

// FetchCoordinator 并发抓取协调器抽象
type FetchCoordinator interface {
	Fetch(ctx context.Context, url, dir string) (fetch.Outcome, error)
}

// ToolEnsurer 外部工具安装抽象（幂等，首次之后为廉价检查）
type ToolEnsurer interface {
	Ensure(ctx context.Context) error
}

// Publisher 状态事件发布抽象（非阻塞，尽力而为）
type Publisher interface {
	Publish(state model.ArchiverState)
}

// Archiver 归档流水线：驱动单个任务走完
// 取任务 → 幂等检查 → 抓取 → 抽取元数据 → 上传 → 注册。
type Archiver struct {
	queue     queue.TaskQueue
	site      ArchiveSite
	extractor MetadataExtractor
	uploader  Uploader
	fetcher   FetchCoordinator
	tools     ToolEnsurer
	root      *workdir.CacheRoot
	events    Publisher

	// requeue 失败后是否将任务尽力重新入队
	requeue bool
}

// New 创建归档流水线。events 可为 nil（不发布状态事件）。
func New(
	q queue.TaskQueue,
	site ArchiveSite,
	extractor MetadataExtractor,
	uploader Uploader,
	fetcher FetchCoordinator,
	tools ToolEnsurer,
	root *workdir.CacheRoot,
	events Publisher,
	requeue bool,
) *Archiver {
	return &Archiver{
		queue:     q,
		site:      site,
		extractor: extractor,
		uploader:  uploader,
		fetcher:   fetcher,
		tools:     tools,
		root:      root,
		events:    events,
		requeue:   requeue,
	}
}

func (a *Archiver) publish(state model.ArchiverState) {
	if a.events != nil {
		a.events.Publish(state)
	}
}

// RunOne 处理一个任务。返回 nil 表示本轮成功（包括已归档的短路路径）。
func (a *Archiver) RunOne(ctx context.Context) error {
	start := time.Now()
	a.publish(model.StateStarting)

	// 取任务。空队列与队列不可达都向上传播，由退避控制器兜底。
	task, err := a.queue.Consume(ctx)
	if err != nil {
		return fmt.Errorf("consume task: %w", err)
	}

	log := logger.WithRunID(uuid.NewString()).With().Str("video_id", task.Data).Logger()
	log.Info().Msg("开始归档")

	skipped, err := a.runTask(ctx, log, task)
	if err != nil {
		metrics.RecordTaskCompleted("failure", time.Since(start).Seconds())
		a.maybeRequeue(ctx, log, task)
		return err
	}

	a.publish(model.StateIdle)
	// 短路与完整成功只各计一次，避免同一任务双重计数
	if skipped {
		metrics.RecordTaskCompleted("skipped", 0)
	} else {
		metrics.RecordTaskCompleted("success", time.Since(start).Seconds())
	}
	return nil
}

// runTask 任务消费之后的全部步骤（失败时由调用方决定是否重新入队）。
// skipped 表示目标已归档、流水线被幂等短路。
func (a *Archiver) runTask(ctx context.Context, log zerolog.Logger, task model.Task) (skipped bool, err error) {
	// 幂等检查必须先于任何抓取，避免重复下载已归档内容
	archived, err := a.site.IsArchived(ctx, task.Data)
	if err != nil {
		return false, fmt.Errorf("catalog check: %w", err)
	}
	if archived {
		log.Info().Msg("视频已归档，跳过")
		return true, nil
	}

	// 任务私有工作目录，所有退出路径上都会被删除
	dir, cleanup, err := a.root.NewScratch()
	if err != nil {
		return false, fmt.Errorf("create workdir: %w", err)
	}
	defer cleanup()

	a.publish(model.StateDownloading)

	if err := a.tools.Ensure(ctx); err != nil {
		return false, fmt.Errorf("ensure tools: %w", err)
	}

	if _, err := a.fetcher.Fetch(ctx, youtubeWatchURL+task.Data, dir); err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}

	metadata, err := a.extractor.Extract(ctx, dir)
	if err != nil {
		return false, fmt.Errorf("extract metadata: %w", err)
	}

	a.publish(model.StateUploading)

	if err := a.uploader.Upload(ctx, dir, task.Data); err != nil {
		return false, fmt.Errorf("upload: %w", err)
	}

	if err := a.site.Archive(ctx, task.Data, metadata); err != nil {
		// 注册冲突说明别的写入已经完成，按幂等处理
		if errors.Is(err, catalog.ErrConflict) {
			log.Warn().Msg("目录注册冲突，视为已归档")
			return false, nil
		}
		return false, fmt.Errorf("register: %w", err)
	}

	log.Info().Msg("归档完成")
	return false, nil
}

// maybeRequeue 尽力把失败任务塞回队列；入队失败只告警，不掩盖原始错误
func (a *Archiver) maybeRequeue(ctx context.Context, log zerolog.Logger, task model.Task) {
	if !a.requeue {
		return
	}
	if _, err := a.queue.Insert(ctx, task.Data); err != nil {
		log.Warn().Err(err).Msg("任务重新入队失败")
		metrics.RecordError("archiver", "requeue")
		return
	}
	log.Info().Msg("任务已重新入队")
}
