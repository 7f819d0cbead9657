// Package pricing 订单金额与优惠券计算
//
// Evaluate是纯函数:只读取优惠券,不修改任何状态。
// 优惠券使用次数的增加由下单事务在订单写入后完成。
package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// Line 计价行
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote 计价结果
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Voucher  *voucher.Voucher // 未使用优惠券时为nil
}

// VoucherLookup 按券码查找优惠券
type VoucherLookup interface {
	FindByCode(ctx context.Context, code string) (*voucher.Voucher, error)
}

// LookupFunc 函数适配器,事务内可传入加锁查询
//
//	pricing.LookupFunc(repos.Vouchers().LockByCode)
type LookupFunc func(ctx context.Context, code string) (*voucher.Voucher, error)

// FindByCode 实现VoucherLookup
func (f LookupFunc) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	return f(ctx, code)
}

// Subtotal Σ unitPrice × quantity
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Evaluate 计算小计、优惠和应付金额
// code为空时不使用优惠券;券不存在、已过期、已用完或小计未达门槛统一返回ErrVoucherInvalid
func Evaluate(ctx context.Context, lines []Line, code string, lookup VoucherLookup, today time.Time) (*Quote, error) {
	subtotal := Subtotal(lines)
	q := &Quote{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Total:    subtotal,
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return q, nil
	}

	v, err := lookup.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, voucher.ErrVoucherNotFound) {
			return nil, voucher.ErrVoucherInvalid.Withf("优惠券%s不存在", code)
		}
		return nil, err
	}
	if v.IsExpired(today) {
		return nil, voucher.ErrVoucherInvalid.Withf("优惠券%s已过期", code)
	}
	if !v.IsRedeemable(subtotal, today) {
		if v.UsedCount >= v.UsageLimit {
			return nil, voucher.ErrVoucherInvalid.Withf("优惠券%s已达使用上限", code)
		}
		return nil, voucher.ErrVoucherInvalid.Withf("订单金额未达到优惠券%s的最低金额%s", code, v.MinOrderAmount.StringFixed(2))
	}

	q.Discount = v.Discount(subtotal)
	q.Total = subtotal.Sub(q.Discount)
	q.Voucher = v
	return q, nil
}
