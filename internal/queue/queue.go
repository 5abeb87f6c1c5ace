package queue

import (
	"context"
	"errors"

	"github.com/azhengyongqin/archivebot/internal/model"
)

// ErrEmpty 队列为空（区别于队列不可达等传输错误）
var ErrEmpty = errors.New("queue is empty")

// TaskQueue 任务队列抽象。Consume 每次最多取出一个任务（取出即从队列删除，
// 至少一次语义，幂等由目录检查兜底）；Insert 用于失败后重新入队。
type TaskQueue interface {
	// Consume 取出优先级最高的任务；队列为空时返回 ErrEmpty
	Consume(ctx context.Context) (model.Task, error)
	// Insert 插入任务；若任务已存在则提升其优先级
	Insert(ctx context.Context, data string) (key string, err error)
	// List 返回队首若干任务及总数（用于就绪检查与观测）
	List(ctx context.Context) (tasks []string, count int, err error)
}
