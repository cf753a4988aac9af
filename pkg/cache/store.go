// Package cache 提供命名空间隔离、带 TTL 的缓存抽象
//
// Store 是底层键值存储接口，提供内存和 Redis 两种实现。
// Cache 在 Store 之上增加命名空间、默认 TTL 和 JSON 编解码，
// 由使用方作为依赖注入。内存实现是进程内缓存，多实例部署下
// 各实例间不做失效广播，过期时间是跨实例不一致的上界；
// 需要跨实例一致时使用 Redis 实现。
package cache

import (
	"context"
	"time"
)

// Store 底层键值存储接口
type Store interface {
	// Get 返回 key 对应的值；不存在或已过期时 found 为 false
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 写入 key，ttl <= 0 表示永不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除单个 key，key 不存在时不报错
	Delete(ctx context.Context, key string) error
	// DeletePrefix 删除所有以 prefix 开头的 key
	DeletePrefix(ctx context.Context, prefix string) error
}
