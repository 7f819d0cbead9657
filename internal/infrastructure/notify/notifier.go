package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// notifyTimeout 提交后通知的超时时间，与请求的ctx解耦
const notifyTimeout = 5 * time.Second

// OrderPlaced 下单成功事件
type OrderPlaced struct {
	OrderID       uint            `json:"order_id"`
	OrderNo       string          `json:"order_no"`
	UserID        uint            `json:"user_id"`
	Email         string          `json:"email"`
	CustomerName  string          `json:"customer_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	VoucherCode   string          `json:"voucher_code,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	OrderDate     time.Time       `json:"order_date"`
}

// Notifier 业务通知的统一入口
type Notifier struct {
	mail      Sender
	publisher Publisher
	logger    *zap.Logger
}

// NewNotifier mail需要已包装为BestEffort或自行处理失败
func NewNotifier(mail Sender, publisher Publisher, logger *zap.Logger) *Notifier {
	return &Notifier{mail: mail, publisher: publisher, logger: logger}
}

// Welcome 注册欢迎邮件
func (n *Notifier) Welcome(ctx context.Context, email, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	_ = n.mail.Send(ctx, Mail{
		To:      email,
		Subject: "欢迎加入书店",
		Body:    fmt.Sprintf("%s，您好！感谢注册，祝您阅读愉快。", name),
	})
}

// PasswordReset 找回密码邮件,link已包含重置凭证
func (n *Notifier) PasswordReset(ctx context.Context, email, name, link string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	_ = n.mail.Send(ctx, Mail{
		To:      email,
		Subject: "重置您的书店密码",
		Body: fmt.Sprintf("%s，您好！请在%d分钟内打开以下链接设置新密码：\n%s\n如果不是您本人操作，请忽略本邮件。",
			name, int(ttl.Minutes()), link),
	})
}

// OrderPlaced 并发发送确认邮件与order.placed事件，任何失败或panic只记日志
func (n *Notifier) OrderPlaced(ctx context.Context, evt OrderPlaced) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		_ = n.mail.Send(ctx, Mail{
			To:      evt.Email,
			Subject: fmt.Sprintf("订单%s已提交", evt.OrderNo),
			Body: fmt.Sprintf("%s，您好！您的订单%s已提交，商品金额%s元，优惠%s元，实付%s元。",
				evt.CustomerName, evt.OrderNo, evt.Subtotal.StringFixed(2), evt.Discount.StringFixed(2), evt.Total.StringFixed(2)),
		})
	})
	wg.Go(func() {
		err := n.publisher.Publish(ctx, RoutingKeyOrderPlaced, evt)
		metrics.IncMessagePublished(RoutingKeyOrderPlaced, err)
		if err != nil {
			n.logger.Warn("发布下单事件失败", zap.String("order_no", evt.OrderNo), zap.Error(err))
		}
	})

	if r := wg.WaitAndRecover(); r != nil {
		n.logger.Error("发送下单通知时发生panic", zap.String("order_no", evt.OrderNo), zap.String("panic", r.String()))
	}
}
