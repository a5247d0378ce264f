// Package messaging 领域事件发布
// 事件在业务事务提交后发出，发布失败只记录日志，不影响业务结果
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/SEGIMED/back-sub000/config"
)

// Event 领域事件信封
type Event struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	TenantID    string      `json:"tenant_id"`
	PhysicianID string      `json:"physician_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}

// NewEvent 构造事件并分配 ID
func NewEvent(eventType, tenantID, physicianID string, payload interface{}) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		TenantID:    tenantID,
		PhysicianID: physicianID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ── RabbitMQ ──

type rabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   *zap.Logger
}

// NewRabbitPublisher 连接 RabbitMQ 并声明 topic 交换机
// 事件类型即路由键，例如 schedule.week_upserted
func NewRabbitPublisher(cfg *config.BrokerConfig, logger *zap.Logger) (Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("打开 RabbitMQ 通道失败: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}

	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))

	return &rabbitPublisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Headers: amqp091.Table{
			"tenant_id": event.TenantID,
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}

	p.logger.Debug("事件已发布",
		zap.String("type", event.Type),
		zap.String("event_id", event.ID),
	)
	return nil
}

func (p *rabbitPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("关闭 RabbitMQ 通道失败", zap.Error(err))
	}
	return p.conn.Close()
}

// ── Noop ──

type noopPublisher struct{}

// NewNoopPublisher 未启用 broker 时使用，丢弃所有事件
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() error { return nil }
