package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/pricing"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/notify"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// Notifier 下单成功后的通知,实现方自行吞掉失败
type Notifier interface {
	OrderPlaced(ctx context.Context, evt notify.OrderPlaced)
}

// PlaceOrderUseCase 下单用例
//
// 整个流程在一个事务内完成:
//  1. 校验下单用户
//  2. 校验订单行,按配置核对图书单价
//  3. 计价并校验优惠券(优惠券行加锁)
//  4. 扣减库存(图书按ID升序加锁)
//  5. 解析收货地址,新地址在所有校验通过后才写入
//  6. 写入订单与订单行
//  7. 优惠券使用次数+1(带used_count < usage_limit条件)
//
// 任一步失败整体回滚;提交之后再发送确认邮件与order.placed事件
type PlaceOrderUseCase struct {
	uow             order.UnitOfWork
	notifier        Notifier
	verifyUnitPrice bool
	logger          *zap.Logger
	now             func() time.Time
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(uow order.UnitOfWork, notifier Notifier, cfg *config.Config, logger *zap.Logger) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		uow:             uow,
		notifier:        notifier,
		verifyUnitPrice: cfg.Order.VerifyUnitPrice,
		logger:          logger,
		now:             time.Now,
	}
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	UserID        uint
	Shipping      Shipping
	PaymentMethod string
	IsPaid        bool
	Items         []PlaceOrderItem
	VoucherCode   string
}

// Shipping 收货信息:AddressID与新地址二选一,AddressID优先
type Shipping struct {
	AddressID     uint
	RecipientName string
	Address       string
	Phone         string
}

// PlaceOrderItem 订单行,BookID与ComboID二选一
type PlaceOrderItem struct {
	BookID    uint
	ComboID   uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// PlaceOrderResponse 下单结果
type PlaceOrderResponse struct {
	OrderID     uint            `json:"order_id"`
	OrderNo     string          `json:"order_no"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	AddressID   uint            `json:"address_id"`
	VoucherCode string          `json:"voucher_code,omitempty"`
	OrderDate   time.Time       `json:"order_date"`
}

// Execute 执行下单
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (resp *PlaceOrderResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "PlaceOrder")
	done := metrics.TrackOrderPlacement()
	defer func() {
		done(failureReason(err))
		tracing.EndSpan(span, err)
	}()

	lines, err := toLines(req.Items)
	if err != nil {
		return nil, err
	}
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		return nil, order.ErrInvalidPaymentMethod
	}

	// 新地址先在内存中校验,写入推迟到事务末尾
	var newAddr *address.Address
	if req.Shipping.AddressID == 0 {
		if req.Shipping.RecipientName == "" && req.Shipping.Address == "" && req.Shipping.Phone == "" {
			return nil, order.ErrInvalidShipping
		}
		newAddr, err = address.New(req.UserID, req.Shipping.RecipientName, req.Shipping.Address, req.Shipping.Phone)
		if err != nil {
			return nil, err
		}
	}

	var (
		placed   *order.Order
		customer *user.User
		quote    *pricing.Quote
	)
	err = uc.uow.Do(ctx, func(ctx context.Context, repos order.Repositories) error {
		var err error

		// 1. 下单用户
		customer, err = repos.Users().FindByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return order.ErrCustomerNotFound
			}
			return err
		}

		// 2. 单价核对
		if uc.verifyUnitPrice {
			if err := checkUnitPrices(ctx, repos.Books(), lines); err != nil {
				return err
			}
		}

		// 3. 计价与优惠券
		quote, err = pricing.Evaluate(ctx, order.PricingLines(lines), req.VoucherCode, pricing.LookupFunc(repos.Vouchers().LockByCode), uc.now())
		if err != nil {
			return err
		}

		// 4. 库存
		adjuster := inventory.NewAdjuster(repos.Books(), repos.Combos(), uc.logger)
		if err := adjuster.Reserve(ctx, order.InventoryLines(lines)); err != nil {
			return err
		}

		// 5. 收货地址
		addressID, err := uc.resolveAddress(ctx, repos.Addresses(), req.UserID, req.Shipping.AddressID, newAddr)
		if err != nil {
			return err
		}

		// 6. 订单与订单行
		placed = order.NewOrder(order.GenerateOrderNo(uc.now()), customer.ID, addressID, req.PaymentMethod, req.IsPaid, lines, quote)
		if err := repos.Orders().Create(ctx, placed); err != nil {
			return err
		}

		// 7. 优惠券核销
		if quote.Voucher != nil {
			if err := repos.Vouchers().IncrementUsage(ctx, quote.Voucher.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Info("下单失败", zap.Uint("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	voucherCode := ""
	if quote.Voucher != nil {
		voucherCode = quote.Voucher.Code
		metrics.IncVoucherRedemption()
	}

	uc.logger.Info("下单成功",
		zap.Uint("order_id", placed.ID),
		zap.String("order_no", placed.OrderNo),
		zap.Uint("user_id", placed.UserID),
		zap.String("total", placed.Total.StringFixed(2)),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
	)

	uc.notifier.OrderPlaced(ctx, notify.OrderPlaced{
		OrderID:       placed.ID,
		OrderNo:       placed.OrderNo,
		UserID:        customer.ID,
		Email:         customer.Email,
		CustomerName:  customer.Name,
		Subtotal:      placed.Subtotal,
		Discount:      placed.Discount,
		Total:         placed.Total,
		VoucherCode:   voucherCode,
		PaymentMethod: placed.PaymentMethod,
		OrderDate:     placed.OrderDate,
	})

	return &PlaceOrderResponse{
		OrderID:     placed.ID,
		OrderNo:     placed.OrderNo,
		Subtotal:    placed.Subtotal,
		Discount:    placed.Discount,
		Total:       placed.Total,
		Status:      placed.Status.String(),
		AddressID:   placed.ShippingAddressID,
		VoucherCode: voucherCode,
		OrderDate:   placed.OrderDate,
	}, nil
}

// resolveAddress 使用已有地址(必须属于下单用户)或写入新地址
func (uc *PlaceOrderUseCase) resolveAddress(ctx context.Context, repo address.Repository, userID, addressID uint, newAddr *address.Address) (uint, error) {
	if addressID != 0 {
		a, err := repo.FindByID(ctx, addressID)
		if err != nil {
			return 0, err
		}
		if !a.IsOwnedBy(userID) {
			return 0, address.ErrAddressNotFound
		}
		return a.ID, nil
	}
	if err := repo.Create(ctx, newAddr); err != nil {
		return 0, err
	}
	return newAddr.ID, nil
}

func toLines(items []PlaceOrderItem) ([]order.Line, error) {
	lines := make([]order.Line, len(items))
	for i, it := range items {
		l := order.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		if it.BookID != 0 {
			id := it.BookID
			l.BookID = &id
		}
		if it.ComboID != 0 {
			id := it.ComboID
			l.ComboID = &id
		}
		lines[i] = l
	}
	if err := order.ValidateLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// checkUnitPrices 图书行单价必须等于目录价
// 找不到的图书交给库存步骤报告
func checkUnitPrices(ctx context.Context, books book.Repository, lines []order.Line) error {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if l.BookID != nil {
			ids = append(ids, *l.BookID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := books.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	catalog := make(map[uint]*book.Book, len(found))
	for _, b := range found {
		catalog[b.ID] = b
	}

	for _, l := range lines {
		if l.BookID == nil {
			continue
		}
		b, ok := catalog[*l.BookID]
		if ok && !b.Price.Equal(l.UnitPrice) {
			return order.ErrPriceMismatch.Withf("图书《%s》当前价格为%s，提交的单价为%s", b.Title, b.Price.StringFixed(2), l.UnitPrice.StringFixed(2))
		}
	}
	return nil
}

// failureReason 下单失败原因,用作指标标签
func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, book.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, voucher.ErrVoucherInvalid):
		return "voucher_invalid"
	case errors.Is(err, combo.ErrInvalidCombo), errors.Is(err, combo.ErrComboNotFound):
		return "invalid_combo"
	case errors.Is(err, order.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, order.ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, address.ErrAddressNotFound):
		return "address_not_found"
	default:
		return "other"
	}
}
