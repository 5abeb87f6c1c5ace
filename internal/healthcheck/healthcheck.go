package healthcheck

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azhengyongqin/archivebot/internal/queue"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	pgPool *pgxpool.Pool
	queue  queue.TaskQueue
}

// NewHealthChecker 创建健康检查器。pgPool 可为 nil（目录后端不是 Postgres 时）。
func NewHealthChecker(pgPool *pgxpool.Pool, q queue.TaskQueue) *HealthChecker {
	return &HealthChecker{
		pgPool: pgPool,
		queue:  q,
	}
}

// CheckResult 健康检查结果
type CheckResult struct {
	Status string            `json:"status"` // "ok" or "error"
	Checks map[string]string `json:"checks"`
}

// LivenessCheck 存活检查（快速返回，不检查依赖）
func (h *HealthChecker) LivenessCheck() CheckResult {
	return CheckResult{
		Status: "ok",
		Checks: map[string]string{
			"service": "running",
		},
	}
}

// ReadinessCheck 就绪检查（检查所有依赖）
func (h *HealthChecker) ReadinessCheck(ctx context.Context) CheckResult {
	result := CheckResult{
		Checks: make(map[string]string),
	}

	// 检查 PostgreSQL 连接（目录为 Postgres 后端时）
	if h.pgPool != nil {
		if err := h.checkPostgres(ctx); err != nil {
			result.Checks["postgres"] = "error: " + err.Error()
			result.Status = "error"
		} else {
			result.Checks["postgres"] = "ok"
		}
	}

	// 检查任务队列可达性
	if h.queue != nil {
		if err := h.checkQueue(ctx); err != nil {
			result.Checks["queue"] = "error: " + err.Error()
			result.Status = "error"
		} else {
			result.Checks["queue"] = "ok"
		}
	}

	// 如果所有检查都通过
	if result.Status == "" {
		result.Status = "ok"
	}

	return result
}

// checkPostgres 检查 PostgreSQL 连接
func (h *HealthChecker) checkPostgres(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return h.pgPool.Ping(ctx)
}

// checkQueue 检查队列可达性。List 是只读操作，空队列也算可达。
func (h *HealthChecker) checkQueue(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, _, err := h.queue.List(ctx)
	return err
}
