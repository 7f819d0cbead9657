package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/pricing"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Order 订单实体(聚合根)
// 订单与订单行在同一事务中一次性创建,之后订单行不再变化
type Order struct {
	ID                uint
	OrderNo           string // 订单号(业务主键,全局唯一)
	UserID            uint
	ShippingAddressID uint
	OrderDate         time.Time
	Subtotal          decimal.Decimal // 优惠前金额
	Discount          decimal.Decimal // 优惠金额
	Total             decimal.Decimal // 应付金额
	Status            Status
	PaymentMethod     string // 如 COD / PayPal
	IsPaid            bool
	VoucherID         *uint // 使用的优惠券
	Lines             []Line
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Line 订单行
// BookID与ComboID有且只有一个非空;UnitPrice是下单时的价格快照
type Line struct {
	ID        uint
	OrderID   uint
	BookID    *uint
	ComboID   *uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// NewBookLine 直接图书行
func NewBookLine(bookID uint, quantity int, unitPrice decimal.Decimal) Line {
	return Line{BookID: &bookID, Quantity: quantity, UnitPrice: unitPrice}
}

// NewComboLine 套装行
func NewComboLine(comboID uint, quantity int, unitPrice decimal.Decimal) Line {
	return Line{ComboID: &comboID, Quantity: quantity, UnitPrice: unitPrice}
}

// Validate 校验单行
func (l Line) Validate() error {
	if (l.BookID == nil) == (l.ComboID == nil) {
		return ErrInvalidLine
	}
	if (l.BookID != nil && *l.BookID == 0) || (l.ComboID != nil && *l.ComboID == 0) {
		return ErrInvalidLine
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidUnitPrice
	}
	return nil
}

// Amount 行金额
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// InventoryLine 转换为库存行
func (l Line) InventoryLine() inventory.Line {
	if l.ComboID != nil {
		return inventory.Line{Kind: inventory.KindCombo, RefID: *l.ComboID, Quantity: l.Quantity}
	}
	return inventory.Line{Kind: inventory.KindBook, RefID: *l.BookID, Quantity: l.Quantity}
}

// ValidateLines 校验订单行集合
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrInvalidOrderItems
	}
	for i, l := range lines {
		if err := l.Validate(); err != nil {
			appErr := apperrors.GetAppError(err)
			return appErr.Withf("第%d行: %s", i+1, appErr.Message)
		}
	}
	return nil
}

// PricingLines 转换为计价行
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return out
}

// InventoryLines 转换为库存行
func InventoryLines(lines []Line) []inventory.Line {
	out := make([]inventory.Line, len(lines))
	for i, l := range lines {
		out[i] = l.InventoryLine()
	}
	return out
}

// NewOrder 创建新订单(工厂方法),初始状态为Pending
func NewOrder(orderNo string, userID, addressID uint, paymentMethod string, isPaid bool, lines []Line, quote *pricing.Quote) *Order {
	now := time.Now()
	o := &Order{
		OrderNo:           orderNo,
		UserID:            userID,
		ShippingAddressID: addressID,
		OrderDate:         now,
		Subtotal:          quote.Subtotal,
		Discount:          quote.Discount,
		Total:             quote.Total,
		Status:            StatusPending,
		PaymentMethod:     strings.TrimSpace(paymentMethod),
		IsPaid:            isPaid,
		Lines:             lines,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if quote.Voucher != nil {
		id := quote.Voucher.ID
		o.VoucherID = &id
	}
	return o
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.Withf("订单状态不能从%s变更为%s", o.Status.Label(), target.Label())
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
