// internal/pkg/idempotency/idempotency.go
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 是幂等回放缓存的抽象。
// 生产环境由 RedisStore 实现，测试中可以用内存实现替代。
type Cache interface {
	// Get 返回 key 对应的缓存内容。第二个返回值表示是否命中。
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put 写入缓存内容，由实现决定过期策略。
	Put(ctx context.Context, key string, value []byte) error
}

// RedisStore 是基于 Redis 的 Cache 实现。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("idem:order:%s", key)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	// SetNX: 并发重复请求只有第一个写入生效
	return s.rdb.SetNX(ctx, s.key(key), value, s.ttl).Err()
}
