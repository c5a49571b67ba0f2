package storage

import (
	"context"
	"fmt"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储依赖
// MySQL是必选依赖；Redis/MinIO/RabbitMQ任一初始化失败只降级对应能力
type Storage struct {
	// 关系型数据库
	MySQL *MySQL

	// 键值缓存
	Redis *Redis

	// 对象存储
	MinIO *MinIO

	// 消息队列
	RabbitMQ *RabbitMQ
}

// NewStorage 创建存储管理器
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	storage.MySQL, err = NewMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("初始化MySQL失败: %w", err)
	}

	storage.Redis, err = NewRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("初始化Redis失败，岗位缓存不可用")
		storage.Redis = nil
	}

	storage.MinIO, err = NewMinIO(ctx, &cfg.MinIO)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("初始化MinIO失败，文件归档不可用")
		storage.MinIO = nil
	}

	storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("初始化RabbitMQ失败，事件发布不可用")
		storage.RabbitMQ = nil
	}

	return storage, nil
}

// Close 关闭所有底层连接
func (s *Storage) Close() {
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
}
