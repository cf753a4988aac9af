// Package wardrobe 提供属性服务的主入口和初始化逻辑
package wardrobe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jimmicro/grace"
	"github.com/jimyag/wardrobe/internal/wardrobe/api"
	"github.com/jimyag/wardrobe/internal/wardrobe/config"
	"github.com/jimyag/wardrobe/internal/wardrobe/metrics"
	"github.com/jimyag/wardrobe/internal/wardrobe/repository"
	"github.com/jimyag/wardrobe/internal/wardrobe/service"
	"github.com/jimyag/wardrobe/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg     *config.Config
	api     *api.API
	repo    *repository.Repository
	sweeper *cache.Sweeper
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	// 1. 创建 Repository（SQLite + 自动迁移）
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	logger.Info().Str("db_path", cfg.DBPath).Msg("Repository initialized")

	// 2. 创建指标
	m := metrics.New(prometheus.DefaultRegisterer)

	// 3. 创建缓存
	// 配置了 Redis 地址时使用共享缓存，多实例间写后失效互相可见；
	// 否则使用进程内内存缓存，由 sweeper 周期清理过期条目
	var store cache.Store
	var sweeper *cache.Sweeper
	if cfg.RedisAddr != "" {
		store = cache.NewRedisStore(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("Using redis cache store")
	} else {
		memStore := cache.NewMemoryStore()
		store = memStore
		sweeper = cache.NewSweeper(memStore, cfg.CacheSweepInterval, cache.WithRecorder(m))
		logger.Info().Msg("Using in-memory cache store")
	}
	attrCache := cache.New(store, "attribute", cfg.CacheTTL, cache.WithRecorder(m))

	// 4. 创建服务
	attributeService := service.NewAttributeService(repo, attrCache)
	entityAttributeService := service.NewEntityAttributeService(repo)

	// 4.1. 确保系统内置属性存在（不存在则创建）
	// 阻塞启动，保证服务可用时目录已经就绪
	logger.Info().Msg("Ensuring default attributes exist...")
	if err := attributeService.EnsureDefaultAttributes(ctx); err != nil {
		return nil, fmt.Errorf("ensure default attributes: %w", err)
	}
	logger.Info().Msg("All default attributes are ready")

	// 5. 创建 API
	apiInstance, err := api.New(cfg.Address, m, attributeService, entityAttributeService)
	if err != nil {
		return nil, err
	}

	server := &Server{
		cfg:     cfg,
		api:     apiInstance,
		repo:    repo,
		sweeper: sweeper,
	}
	return server, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
	}
	if s.sweeper != nil {
		services = append(services, s.sweeper)
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	return s.repo.Close()
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "Wardrobe Attribute Server"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	// 如果有参数，使用 Msgf 格式化消息
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	// 如果有参数，使用 Msgf 格式化消息
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
