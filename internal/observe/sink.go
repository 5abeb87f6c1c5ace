package observe

import (
	"context"
	"sync"
	"time"

	"github.com/azhengyongqin/archivebot/internal/logger"
	"github.com/azhengyongqin/archivebot/internal/metrics"
	"github.com/azhengyongqin/archivebot/internal/model"
	"github.com/azhengyongqin/archivebot/internal/workdir"
)

// sizeInterval 工作集大小的重算周期。目录遍历可能很慢，
// 放在独立 goroutine 上周期执行，绝不阻塞状态发布。
const sizeInterval = 30 * time.Second

// Snapshot 当前观测快照
type Snapshot struct {
	State           model.ArchiverState `json:"state"`
	WorkingSetBytes int64               `json:"working_set_bytes"`
}

// Sink 状态事件接收端：发布侧非阻塞（满了直接丢弃，不拖慢流水线），
// 消费侧维护最新状态（单写多读）与按周期重算的工作集大小。
type Sink struct {
	events chan model.ArchiverState
	root   *workdir.CacheRoot

	mu    sync.RWMutex
	state model.ArchiverState
	bytes int64
}

// NewSink 创建状态接收端
func NewSink(root *workdir.CacheRoot) *Sink {
	return &Sink{
		events: make(chan model.ArchiverState, 64),
		root:   root,
		state:  model.StateIdle,
	}
}

// Publish 发布状态事件。非阻塞：订阅端缺席或积压时直接丢弃。
func (s *Sink) Publish(state model.ArchiverState) {
	select {
	case s.events <- state:
	default:
		// 丢弃而非阻塞
	}
}

// Run 消费状态事件并周期性重算工作集大小，直到 ctx 取消。
func (s *Sink) Run(ctx context.Context) {
	s.refreshSize()

	ticker := time.NewTicker(sizeInterval)
	defer ticker.Stop()

	for {
		select {
		case state := <-s.events:
			s.mu.Lock()
			s.state = state
			s.mu.Unlock()
			metrics.SetArchiverState(state)
		case <-ticker.C:
			s.refreshSize()
		case <-ctx.Done():
			return
		}
	}
}

// Snapshot 返回当前状态与工作集大小
func (s *Sink) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, WorkingSetBytes: s.bytes}
}

// refreshSize 重算缓存目录大小（阻塞操作，只在 Run 的 goroutine 里执行）
func (s *Sink) refreshSize() {
	size, err := s.root.Size()
	if err != nil {
		logger.Warn().Err(err).Msg("统计缓存目录大小失败")
		return
	}

	s.mu.Lock()
	s.bytes = size
	s.mu.Unlock()
	metrics.UpdateCacheDirSize(size)
}
