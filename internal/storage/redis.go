package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/tracing"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = redis.Nil

// Redis 键值存储客户端，用作岗位文本缓存
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedis 创建Redis客户端并注册追踪钩子
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	}
	if cfg.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	}

	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Logger.Warn().Err(err).Msg("注册Redis追踪钩子失败，继续运行")
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	logger.Logger.Info().Str("address", cfg.Address).Msg("成功连接到Redis")
	return &Redis{Client: client, cfg: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// jobTextKey 岗位文本缓存键
func jobTextKey(jobID string) string {
	return constants.JobTextCachePrefix + jobID
}

// CacheJobText 缓存岗位文本，固定24小时过期
func (r *Redis) CacheJobText(ctx context.Context, jobID, text string) error {
	key := jobTextKey(jobID)
	logger.Ctx(ctx).Debug().Str("key", tracing.SafeRedisKey(key)).Msg("写入岗位文本缓存")
	return r.Client.Set(ctx, key, text, constants.JobTextCacheTTL).Err()
}

// GetCachedJobText 读取缓存的岗位文本
// 未命中返回 (_, false, nil)，调用方回源数据库
func (r *Redis) GetCachedJobText(ctx context.Context, jobID string) (string, bool, error) {
	text, err := r.Client.Get(ctx, jobTextKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取岗位文本缓存失败: %w", err)
	}
	return text, true, nil
}

// InvalidateJobText 删除岗位文本缓存，岗位更新后调用
func (r *Redis) InvalidateJobText(ctx context.Context, jobID string) error {
	return r.Client.Del(ctx, jobTextKey(jobID)).Err()
}
