package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"GymTree/pkg/logger"
	"GymTree/storage/redis"
)

const (
	// 空值缓存标识
	emptyValueFlag = "__EMPTY__"
	// 空值缓存 TTL，较短时间避免长期占用
	emptyValueTTL = 5 * time.Minute
	// 防雪崩随机延迟范围
	breakerRandomDelayMax = 200 * time.Millisecond
)

// ProtectedCache 带空值保护与防雪崩延迟的缓存包装器
// 只用于读侧加速（计划列表、档案展示），验证引擎不读它
type ProtectedCache struct {
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
}

// NewProtectedCache 创建受保护的缓存实例
func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
	}
}

// Set 设置缓存，nil 存空值标识
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	cacheKey := redis.Key(pc.keyPrefix, key)

	var data string
	var ttl time.Duration

	if value == nil {
		data = emptyValueFlag
		ttl = pc.emptyTTL
	} else {
		dataBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		data = string(dataBytes)
		ttl = pc.ttl
	}

	return RedisBreaker.Call(ctx, func() error {
		return redis.Client().Set(ctx, cacheKey, data, ttl).Err()
	})
}

// Get 获取缓存，第一个返回值表示是否命中，空值命中时 dest 保持零值
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cacheKey := redis.Key(pc.keyPrefix, key)

	if err := pc.addBreakerDelay(ctx); err != nil {
		logger.Logger.Warn("Failed to add breaker delay",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	// redis 抖动时经熔断器快速失败，未命中不算失败
	var (
		data string
		miss bool
	)
	err := RedisBreaker.Call(ctx, func() error {
		v, e := redis.Client().Get(ctx, cacheKey).Result()
		if e == ri.Nil {
			miss = true
			return nil
		}
		if e != nil {
			return e
		}
		data = v
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to get cache: %w", err)
	}
	if miss {
		return false, nil
	}

	if data == emptyValueFlag {
		return true, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}

// Delete 删除缓存
func (pc *ProtectedCache) Delete(ctx context.Context, key string) error {
	cacheKey := redis.Key(pc.keyPrefix, key)
	return RedisBreaker.Call(ctx, func() error {
		return redis.Client().Del(ctx, cacheKey).Err()
	})
}

func (pc *ProtectedCache) addBreakerDelay(ctx context.Context) error {
	delay := time.Duration(rand.Intn(int(breakerRandomDelayMax)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// 预定义的缓存实例
var (
	PlanProtectedCache    = NewProtectedCache("plan", 24*time.Hour)
	ProfileProtectedCache = NewProtectedCache("profile", 1*time.Hour)
)
