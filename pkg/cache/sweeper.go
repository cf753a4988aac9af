package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval 周期性清理的默认间隔
const DefaultSweepInterval = 30 * time.Minute

// Sweepable 支持主动剔除过期条目的存储
type Sweepable interface {
	Sweep(ctx context.Context) int
}

// Sweeper 周期性清理过期缓存条目的后台任务
// 实现 grace 的服务接口，随进程生命周期启动和停止
type Sweeper struct {
	store    Sweepable
	interval time.Duration
	rec      Recorder

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSweeper 创建清理任务，interval <= 0 时使用 DefaultSweepInterval
func NewSweeper(store Sweepable, interval time.Duration, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	cfg := &Cache{rec: nopRecorder{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		rec:      cfg.rec,
		stop:     make(chan struct{}),
	}
}

// Run 阻塞运行清理循环，直到 ctx 取消或 Shutdown 被调用
func (s *Sweeper) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			evicted := s.store.Sweep(ctx)
			if evicted > 0 {
				s.rec.CacheEviction(evicted)
				logger.Debug().Int("evicted", evicted).Msg("Cache sweep completed")
			}
		}
	}
}

// Shutdown 停止清理循环，可以安全地多次调用
func (s *Sweeper) Shutdown(ctx context.Context) error {
	_ = ctx
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

// Name 实现 grace 的命名接口
func (s *Sweeper) Name() string {
	return "cache sweeper"
}
