package voucher

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// VoucherUseCase 优惠券管理
type VoucherUseCase struct {
	vouchers voucher.Repository
	logger   *zap.Logger
	now      func() time.Time
}

// NewVoucherUseCase 创建优惠券用例
func NewVoucherUseCase(vouchers voucher.Repository, logger *zap.Logger) *VoucherUseCase {
	return &VoucherUseCase{vouchers: vouchers, logger: logger, now: time.Now}
}

// CreateVoucherRequest 创建优惠券
type CreateVoucherRequest struct {
	Code            string
	DiscountPercent decimal.Decimal
	MaxDiscount     decimal.Decimal
	MinOrderAmount  decimal.Decimal
	ExpiryDate      time.Time
	UsageLimit      int
}

// VoucherView 优惠券
type VoucherView struct {
	ID              uint            `json:"id"`
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MaxDiscount     decimal.Decimal `json:"max_discount"`
	MinOrderAmount  decimal.Decimal `json:"min_order_amount"`
	ExpiryDate      string          `json:"expiry_date"` // YYYY-MM-DD
	UsageLimit      int             `json:"usage_limit"`
	UsedCount       int             `json:"used_count"`
	Expired         bool            `json:"expired"`
}

// List 全部优惠券
func (uc *VoucherUseCase) List(ctx context.Context) ([]VoucherView, error) {
	vouchers, err := uc.vouchers.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]VoucherView, len(vouchers))
	for i, v := range vouchers {
		views[i] = uc.toView(v)
	}
	return views, nil
}

// GetByCode 按券码精确查询
func (uc *VoucherUseCase) GetByCode(ctx context.Context, code string) (*VoucherView, error) {
	v, err := uc.vouchers.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	view := uc.toView(v)
	return &view, nil
}

// Create 创建优惠券,已使用次数从0开始
func (uc *VoucherUseCase) Create(ctx context.Context, req CreateVoucherRequest) (*VoucherView, error) {
	v, err := voucher.New(req.Code, req.DiscountPercent, req.MaxDiscount, req.MinOrderAmount, req.ExpiryDate, req.UsageLimit)
	if err != nil {
		return nil, err
	}
	if err := uc.vouchers.Create(ctx, v); err != nil {
		return nil, err
	}
	uc.logger.Info("优惠券已创建", zap.String("code", v.Code), zap.Int("usage_limit", v.UsageLimit))
	view := uc.toView(v)
	return &view, nil
}

// Delete 删除优惠券,已下的订单保留券码
func (uc *VoucherUseCase) Delete(ctx context.Context, id uint) error {
	return uc.vouchers.Delete(ctx, id)
}

func (uc *VoucherUseCase) toView(v *voucher.Voucher) VoucherView {
	return VoucherView{
		ID:              v.ID,
		Code:            v.Code,
		DiscountPercent: v.DiscountPercent,
		MaxDiscount:     v.MaxDiscount,
		MinOrderAmount:  v.MinOrderAmount,
		ExpiryDate:      v.ExpiryDate.Format("2006-01-02"),
		UsageLimit:      v.UsageLimit,
		UsedCount:       v.UsedCount,
		Expired:         v.IsExpired(uc.now()),
	}
}
