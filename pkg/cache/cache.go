package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL 缓存条目的默认存活时间
const DefaultTTL = 5 * time.Minute

// Recorder 缓存命中情况的观测钩子
type Recorder interface {
	CacheHit(namespace string)
	CacheMiss(namespace string)
	CacheEviction(count int)
}

// nopRecorder 默认的空实现
type nopRecorder struct{}

func (nopRecorder) CacheHit(string)   {}
func (nopRecorder) CacheMiss(string)  {}
func (nopRecorder) CacheEviction(int) {}

// Cache 在 Store 之上增加命名空间、默认 TTL 和 JSON 编解码
// 同一个 Store 可以被多个不同命名空间的 Cache 共享
type Cache struct {
	store     Store
	namespace string
	ttl       time.Duration
	rec       Recorder
}

// Option 配置 Cache 的可选项
type Option func(*Cache)

// WithRecorder 设置观测钩子
func WithRecorder(rec Recorder) Option {
	return func(c *Cache) {
		c.rec = rec
	}
}

// New 创建缓存实例
// namespace 用于隔离不同用途的缓存键，ttl <= 0 时使用 DefaultTTL
func New(store Store, namespace string, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		rec:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get 读取 key 并反序列化到 out，返回是否命中
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	b, found, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		return false, err
	}
	if !found {
		c.rec.CacheMiss(c.namespace)
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		// 反序列化失败按 miss 处理，同时删除脏数据
		_ = c.store.Delete(ctx, c.key(key))
		c.rec.CacheMiss(c.namespace)
		return false, nil
	}
	c.rec.CacheHit(c.namespace)
	return true, nil
}

// Set 以默认 TTL 写入 key
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	return c.SetTTL(ctx, key, value, c.ttl)
}

// SetTTL 以指定 TTL 写入 key
func (c *Cache) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(key), b, ttl)
}

// Delete 删除若干 key
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.store.Delete(ctx, c.key(key)); err != nil {
			return err
		}
	}
	return nil
}

// DeletePrefix 删除命名空间内所有以 prefix 开头的 key
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.store.DeletePrefix(ctx, c.key(prefix))
}

// key 把逻辑 key 加上命名空间前缀
func (c *Cache) key(k string) string {
	return c.namespace + ":" + k
}
