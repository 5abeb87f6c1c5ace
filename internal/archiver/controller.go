package archiver

import (
	"context"
	"time"

	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/metrics"
	"github.com/azhengyongqin/archivebot/internal/model"
)

// BackoffConfig 退避参数
type BackoffConfig struct {
	// Base 初始退避时长，成功后重置回该值
	Base time.Duration
	// Ceiling 指数退避上限
	Ceiling time.Duration
}

// RunForever 永续循环驱动流水线：成功立即继续并重置退避；
// 失败发布 FailureBackoff，按指数退避等待（封顶 Ceiling）后重试。
// ctx 取消后在当前迭代结束（工作目录已释放）时返回。
func (a *Archiver) RunForever(ctx context.Context, cfg BackoffConfig) {
	delay := cfg.Base

	for {
		if ctx.Err() != nil {
			logger.Info().Msg("归档循环退出")
			return
		}

		err := a.RunOne(ctx)
		if err == nil {
			delay = cfg.Base
			metrics.UpdateBackoff(0)
			continue
		}

		logger.Error().Err(err).Dur("delay", delay).Msg("本轮归档失败，进入退避")
		a.publish(model.StateFailureBackoff)
		metrics.UpdateBackoff(delay.Seconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// 外部关停：不再等满退避窗口
		}

		delay = nextDelay(delay, cfg.Ceiling)
	}
}

// nextDelay 退避翻倍，封顶 ceiling
func nextDelay(delay, ceiling time.Duration) time.Duration {
	delay *= 2
	if delay > ceiling {
		delay = ceiling
	}
	return delay
}
