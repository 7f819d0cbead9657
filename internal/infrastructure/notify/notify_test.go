package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][]interface{}
	err      error
	panicKey string
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	if routingKey == p.panicKey {
		panic("broker gone")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][]interface{})
	}
	p.messages[routingKey] = append(p.messages[routingKey], message)
	return p.err
}

func (p *fakePublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[key])
}

type failingSender struct{}

func (failingSender) Send(context.Context, Mail) error { return errors.New("smtp down") }

func TestMQSender(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewMQSender(pub).Send(context.Background(), Mail{To: "a@b.com", Subject: "hi"}))
	require.Equal(t, 1, pub.count(RoutingKeyMail))

	mail, ok := pub.messages[RoutingKeyMail][0].(Mail)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", mail.To)
}

func TestBestEffortSwallowsError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sender := NewBestEffort(failingSender{}, zap.New(core))

	if err := sender.Send(context.Background(), Mail{To: "a@b.com"}); err != nil {
		t.Errorf("期望nil，实际%v", err)
	}
	assert.Equal(t, 1, logs.FilterMessage("邮件发送失败").Len())
}

func TestNotifierOrderPlaced(t *testing.T) {
	evt := OrderPlaced{
		OrderNo:  "ORD1",
		Email:    "reader@example.com",
		Subtotal: decimal.RequireFromString("30.00"),
		Discount: decimal.RequireFromString("2.00"),
		Total:    decimal.RequireFromString("28.00"),
	}

	t.Run("邮件与事件都发送", func(t *testing.T) {
		pub := &fakePublisher{}
		n := NewNotifier(NewMQSender(pub), pub, zap.NewNop())
		n.OrderPlaced(context.Background(), evt)

		assert.Equal(t, 1, pub.count(RoutingKeyMail))
		assert.Equal(t, 1, pub.count(RoutingKeyOrderPlaced))
	})

	t.Run("发布失败只记录日志", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		logger := zap.New(core)
		pub := &fakePublisher{err: errors.New("channel closed")}
		n := NewNotifier(NewBestEffort(NewMQSender(pub), logger), pub, logger)

		n.OrderPlaced(context.Background(), evt)
		assert.Equal(t, 1, logs.FilterMessage("发布下单事件失败").Len())
		assert.Equal(t, 1, logs.FilterMessage("邮件发送失败").Len())
	})

	t.Run("panic被恢复", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		pub := &fakePublisher{panicKey: RoutingKeyOrderPlaced}
		n := NewNotifier(NewLogSender(zap.NewNop()), pub, zap.New(core))

		assert.NotPanics(t, func() { n.OrderPlaced(context.Background(), evt) })
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("请求取消不影响通知", func(t *testing.T) {
		pub := &fakePublisher{}
		n := NewNotifier(NewMQSender(pub), pub, zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n.OrderPlaced(ctx, evt)
		assert.Equal(t, 1, pub.count(RoutingKeyOrderPlaced))
	})
}

func TestNotifierWelcome(t *testing.T) {
	pub := &fakePublisher{}
	NewNotifier(NewMQSender(pub), NewLogPublisher(zap.NewNop()), zap.NewNop()).Welcome(context.Background(), "new@example.com", "小明")

	require.Equal(t, 1, pub.count(RoutingKeyMail))
	mail := pub.messages[RoutingKeyMail][0].(Mail)
	assert.Equal(t, "new@example.com", mail.To)
	assert.Contains(t, mail.Body, "小明")
}

func TestNotifierPasswordReset(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(NewMQSender(pub), NewLogPublisher(zap.NewNop()), zap.NewNop())
	n.PasswordReset(context.Background(), "reader@example.com", "读者", "http://localhost/reset?token=abc", 30*time.Minute)

	require.Equal(t, 1, pub.count(RoutingKeyMail))
	mail := pub.messages[RoutingKeyMail][0].(Mail)
	assert.Equal(t, "reader@example.com", mail.To)
	assert.Contains(t, mail.Body, "token=abc")
	assert.Contains(t, mail.Body, "30分钟")
}
