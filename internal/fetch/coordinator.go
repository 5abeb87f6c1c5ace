package fetch

import (
	"context"
	"fmt"

	"github.com/azhengyongqin/archivebot/internal/logger"
)

// Coordinator 并发抓取协调器：主抓取与次抓取共用一个工作目录并发执行，
// 两者都结束后才返回。主抓取失败使整个抓取失败；次抓取失败只降级（告警）。
type Coordinator struct {
	primary   Fetcher
	secondary Fetcher
}

// NewCoordinator 创建协调器。secondary 可为 nil（不抓附属产物）。
func NewCoordinator(primary, secondary Fetcher) *Coordinator {
	return &Coordinator{primary: primary, secondary: secondary}
}

type secondaryResult struct {
	outcome Outcome
	err     error
}

// Fetch 抓取 url 到 dir。返回主抓取的 Outcome；
// 主抓取 spawn 失败或非零退出时返回错误（非零退出为 *ExitError）。
func (c *Coordinator) Fetch(ctx context.Context, url, dir string) (Outcome, error) {
	// 次抓取先行启动，主抓取在当前 goroutine 执行
	secc := make(chan secondaryResult, 1)
	if c.secondary != nil {
		go func() {
			outcome, err := c.secondary.Fetch(ctx, url, dir)
			secc <- secondaryResult{outcome: outcome, err: err}
		}()
	} else {
		secc <- secondaryResult{}
	}

	primary, perr := c.primary.Fetch(ctx, url, dir)

	// 等待次抓取结束（无论主抓取成败，不留孤儿进程）
	sec := <-secc
	switch {
	case sec.err != nil:
		logger.Warn().Err(sec.err).Str("url", url).Msg("次抓取无法启动")
	case !sec.outcome.Success():
		logger.Warn().
			Int("exit", sec.outcome.ExitCode).
			Str("stderr", string(sec.outcome.Stderr)).
			Str("url", url).
			Msg("次抓取非零退出")
	}

	if perr != nil {
		return primary, fmt.Errorf("spawn primary fetcher: %w", perr)
	}
	if !primary.Success() {
		return primary, &ExitError{
			ExitCode: primary.ExitCode,
			Stderr:   string(primary.Stderr),
		}
	}
	return primary, nil
}
