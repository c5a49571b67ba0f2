package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// RabbitMQ 消息队列客户端，发布分析完成事件
// 事件发布属于旁路操作，失败只记日志，不影响分析结果
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

// NewRabbitMQ 创建连接并声明事件交换机
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建RabbitMQ通道失败: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.AnalyzedEventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}

	logger.Logger.Info().Str("exchange", cfg.AnalyzedEventsExchange).Msg("成功连接到RabbitMQ")
	return &RabbitMQ{conn: conn, channel: channel, cfg: cfg}, nil
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// PublishJSON 将消息序列化为JSON并以持久化模式发布
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	err = r.channel.PublishWithContext(ctx, exchange, routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	return nil
}

// PublishResumeAnalyzed 发布分析完成事件
func (r *RabbitMQ) PublishResumeAnalyzed(ctx context.Context, msg *ResumeAnalyzedMessage) error {
	return r.PublishJSON(ctx, r.cfg.AnalyzedEventsExchange, r.cfg.AnalyzedRoutingKey, msg)
}
