// Package voucher 优惠券
package voucher

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Voucher 优惠券实体
// 不变量:UsedCount <= UsageLimit
type Voucher struct {
	ID              uint
	Code            string          // 券码,全局唯一
	DiscountPercent decimal.Decimal // 折扣百分比,(0,100]
	MaxDiscount     decimal.Decimal // 单笔最高优惠金额
	MinOrderAmount  decimal.Decimal // 最低订单金额
	ExpiryDate      time.Time       // 到期日,当天仍可用
	UsageLimit      int
	UsedCount       int
	CreatedAt       time.Time
}

var (
	// ErrVoucherNotFound 优惠券不存在
	ErrVoucherNotFound = apperrors.New(apperrors.ErrCodeVoucherNotFound, "优惠券不存在")

	// ErrVoucherInvalid 优惠券不可用(不存在、已过期、已用完或未达最低金额)
	ErrVoucherInvalid = apperrors.New(apperrors.ErrCodeVoucherInvalid, "优惠券不可用")

	// ErrVoucherDuplicate 券码已存在
	ErrVoucherDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "优惠券代码已存在")

	// ErrInvalidVoucher 创建参数不合法
	ErrInvalidVoucher = apperrors.New(apperrors.ErrCodeInvalidParams, "优惠券参数不合法")
)

// New 创建优惠券,UsedCount固定为0
func New(code string, percent, maxDiscount, minOrderAmount decimal.Decimal, expiryDate time.Time, usageLimit int) (*Voucher, error) {
	v := &Voucher{
		Code:            strings.TrimSpace(code),
		DiscountPercent: percent,
		MaxDiscount:     maxDiscount,
		MinOrderAmount:  minOrderAmount,
		ExpiryDate:      expiryDate,
		UsageLimit:      usageLimit,
		CreatedAt:       time.Now(),
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate 校验实体不变量
func (v *Voucher) Validate() error {
	switch {
	case v.Code == "" || len(v.Code) > 50:
		return ErrInvalidVoucher.Withf("券码不能为空且不超过50个字符")
	case !v.DiscountPercent.IsPositive() || v.DiscountPercent.GreaterThan(hundred):
		return ErrInvalidVoucher.Withf("折扣百分比必须在(0,100]之间")
	case v.MaxDiscount.IsNegative():
		return ErrInvalidVoucher.Withf("最高优惠金额不能为负数")
	case v.MinOrderAmount.IsNegative():
		return ErrInvalidVoucher.Withf("最低订单金额不能为负数")
	case v.UsageLimit < 1:
		return ErrInvalidVoucher.Withf("使用次数上限至少为1")
	case v.UsedCount < 0 || v.UsedCount > v.UsageLimit:
		return ErrInvalidVoucher.Withf("已使用次数超出范围")
	}
	return nil
}

// IsExpired 到期日早于today所在日期即视为过期
func (v *Voucher) IsExpired(today time.Time) bool {
	return dateOf(v.ExpiryDate, today.Location()).Before(dateOf(today, today.Location()))
}

// IsRedeemable 单一可用性判断:未过期、未用完、达到最低金额
func (v *Voucher) IsRedeemable(subtotal decimal.Decimal, today time.Time) bool {
	return !v.IsExpired(today) &&
		v.UsedCount < v.UsageLimit &&
		subtotal.GreaterThanOrEqual(v.MinOrderAmount)
}

// Discount 计算优惠金额 min(subtotal*percent/100, maxDiscount),且不超过subtotal
func (v *Voucher) Discount(subtotal decimal.Decimal) decimal.Decimal {
	d := decimal.Min(subtotal.Mul(v.DiscountPercent).Div(hundred), v.MaxDiscount)
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Repository 优惠券仓储接口
type Repository interface {
	Create(ctx context.Context, v *Voucher) error
	FindByID(ctx context.Context, id uint) (*Voucher, error)
	// FindByCode 精确匹配券码,不存在返回ErrVoucherNotFound
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	// LockByCode 事务内加行锁查询
	LockByCode(ctx context.Context, code string) (*Voucher, error)
	List(ctx context.Context) ([]*Voucher, error)
	Delete(ctx context.Context, id uint) error
	// IncrementUsage used_count+1,仅当used_count < usage_limit;条件不满足返回ErrVoucherInvalid
	IncrementUsage(ctx context.Context, id uint) error
	// DecrementUsage used_count-1,不低于0
	DecrementUsage(ctx context.Context, id uint) error
}
