// Package notify 邮件与领域事件通知
//
// 通知都在事务提交之后发送，属于尽力而为：失败只记日志，不影响主流程。
// 启用MQ时通过RabbitMQ发布（mail.send / order.placed），由下游消费者处理；
// 未启用时只写日志。
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Routing keys
const (
	RoutingKeyMail        = "mail.send"
	RoutingKeyOrderPlaced = "order.placed"
)

// Mail 一封待发送的邮件
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender 邮件发送
type Sender interface {
	Send(ctx context.Context, mail Mail) error
}

// Publisher 消息发布，*mq.Publisher实现了该接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// MQSender 把邮件投递到消息队列
type MQSender struct {
	publisher Publisher
}

func NewMQSender(publisher Publisher) *MQSender {
	return &MQSender{publisher: publisher}
}

func (s *MQSender) Send(ctx context.Context, mail Mail) error {
	err := s.publisher.Publish(ctx, RoutingKeyMail, mail)
	metrics.IncMessagePublished(RoutingKeyMail, err)
	return err
}

// LogSender 只记录日志，MQ关闭时使用
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, mail Mail) error {
	s.logger.Info("邮件（未启用MQ，仅记录）",
		zap.String("to", mail.To),
		zap.String("subject", mail.Subject),
	)
	return nil
}

// LogPublisher 只记录日志的事件发布者
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.logger.Info("事件（未启用MQ，仅记录）", zap.String("routing_key", routingKey), zap.Any("message", message))
	return nil
}

// BestEffort 包装Sender，失败只记录日志，永远返回nil
type BestEffort struct {
	sender Sender
	logger *zap.Logger
}

func NewBestEffort(sender Sender, logger *zap.Logger) *BestEffort {
	return &BestEffort{sender: sender, logger: logger}
}

func (b *BestEffort) Send(ctx context.Context, mail Mail) error {
	if err := b.sender.Send(ctx, mail); err != nil {
		b.logger.Warn("邮件发送失败", zap.String("to", mail.To), zap.String("subject", mail.Subject), zap.Error(err))
	}
	return nil
}
