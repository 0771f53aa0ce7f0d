// Package cache Redis 缓存：歌单记录与文件夹详情。
//
// 缓存只做加速，读写失败由调用方记录日志后回退到数据库/磁盘。
//
// 每个缓存项有对应的代数键。失效时递增代数并删除数据；读方在查库前取代数，
// 写回时代数已变化说明期间发生过失效，此时放弃写入，避免旧数据在失效之后被写回。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jdlmedia/metrics"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL 未配置时的过期时间
const DefaultTTL = 10 * time.Minute

// generationTTLFactor 代数键比数据多保留的倍数，必须远长于一次请求
const generationTTLFactor = 6

// RedisCache 基于 go-redis 的 JSON 缓存
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New ttl <= 0 时使用 DefaultTTL
func New(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// getJSON 未命中返回 false, nil
func (c *RedisCache) getJSON(ctx context.Context, name, key string, dst interface{}) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("Redis client not initialized")
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues(name, "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues(name, "error").Inc()
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// 结构变化后的旧数据按未命中处理
		metrics.CacheRequests.WithLabelValues(name, "miss").Inc()
		c.client.Del(ctx, key)
		return false, nil
	}
	metrics.CacheRequests.WithLabelValues(name, "hit").Inc()
	return true, nil
}

func (c *RedisCache) del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// delPattern 按模式删除，使用 SCAN 避免阻塞
func (c *RedisCache) delPattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", pattern, err)
	}
	return c.del(ctx, keys...)
}

// mgetter *redis.Client 与 WATCH 中的 *redis.Tx 都满足
type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// generation 读取代数键，缺失记为 0，多个键用 ":" 拼接
func (c *RedisCache) generation(ctx context.Context, cmd mgetter, genKeys ...string) (string, error) {
	values, err := cmd.MGet(ctx, genKeys...).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read generation: %w", err)
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "0"
		if s, ok := v.(string); ok {
			parts[i] = s
		}
	}
	return strings.Join(parts, ":"), nil
}

// setJSONAt 代数仍为 gen 时写入，否则放弃。写入期间代数变化同样放弃。
func (c *RedisCache) setJSONAt(ctx context.Context, name, key string, v interface{}, gen string, genKeys ...string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	stale := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, genKeys...)
		if err != nil {
			return err
		}
		if current != gen {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, genKeys...)
	if errors.Is(err, redis.TxFailedErr) {
		stale = true
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if stale {
		metrics.CacheRequests.WithLabelValues(name, "stale").Inc()
	}
	return nil
}

// bump 递增代数并删除数据键，在同一个事务里执行
func (c *RedisCache) bump(ctx context.Context, genKeys, dataKeys []string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range genKeys {
			pipe.Incr(ctx, k)
			pipe.Expire(ctx, k, c.ttl*generationTTLFactor)
		}
		if len(dataKeys) > 0 {
			pipe.Del(ctx, dataKeys...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate keys: %w", err)
	}
	return nil
}
