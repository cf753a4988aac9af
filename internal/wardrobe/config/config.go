// Package config 提供服务配置
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	// DBPath 是 SQLite 数据库文件路径
	// 可以通过环境变量 WARDROBE_DB_PATH 配置
	// 默认：~/.local/share/wardrobe/wardrobe.db
	DBPath string

	// Address 是 HTTP 服务绑定地址
	// 可以通过环境变量 WARDROBE_ADDRESS 配置
	Address string

	// CacheTTL 是属性目录缓存的过期时间
	// 可以通过环境变量 WARDROBE_CACHE_TTL 配置，如 5m、30s
	CacheTTL time.Duration

	// CacheSweepInterval 是内存缓存过期条目的清理周期
	// 可以通过环境变量 WARDROBE_CACHE_SWEEP_INTERVAL 配置
	CacheSweepInterval time.Duration

	// RedisAddr 是 Redis 地址，为空时使用进程内内存缓存
	// 多实例部署时配置 WARDROBE_REDIS_ADDR 共享缓存
	RedisAddr string
}

func New() (*Config, error) {
	cfg := &Config{
		DBPath:             getDBPath(),
		Address:            getAddress(),
		CacheTTL:           getDuration("WARDROBE_CACHE_TTL", 5*time.Minute),
		CacheSweepInterval: getDuration("WARDROBE_CACHE_SWEEP_INTERVAL", 30*time.Minute),
		RedisAddr:          os.Getenv("WARDROBE_REDIS_ADDR"),
	}
	return cfg, nil
}

// getDBPath 获取数据库文件路径，优先使用环境变量
func getDBPath() string {
	// 1. 优先使用环境变量 WARDROBE_DB_PATH
	if path := os.Getenv("WARDROBE_DB_PATH"); path != "" {
		return path
	}

	// 2. 使用用户主目录下的 .local/share/wardrobe
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "wardrobe", "wardrobe.db")
	}

	// 3. 如果无法获取主目录，使用当前目录下的 data
	return filepath.Join(".", "data", "wardrobe.db")
}

// getAddress 获取绑定地址，优先使用环境变量 WARDROBE_ADDRESS
func getAddress() string {
	if addr := os.Getenv("WARDROBE_ADDRESS"); addr != "" {
		return addr
	}

	return "0.0.0.0:8080"
}

// getDuration 解析时间配置，解析失败时使用默认值
func getDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
