package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// QueryOrdersUseCase 订单查询(只读投影)
// 关联的用户、地址、图书、套装按ID批量加载,避免逐行查询
type QueryOrdersUseCase struct {
	orders    order.Repository
	users     user.Repository
	addresses address.Repository
	books     book.Repository
	combos    combo.Repository
}

// NewQueryOrdersUseCase 创建订单查询用例
func NewQueryOrdersUseCase(
	orders order.Repository,
	users user.Repository,
	addresses address.Repository,
	books book.Repository,
	combos combo.Repository,
) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{
		orders:    orders,
		users:     users,
		addresses: addresses,
		books:     books,
		combos:    combos,
	}
}

// OrderView 订单详情
type OrderView struct {
	ID            uint            `json:"id"`
	OrderNo       string          `json:"order_no"`
	OrderDate     time.Time       `json:"order_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	StatusLabel   string          `json:"status_label"`
	PaymentMethod string          `json:"payment_method"`
	IsPaid        bool            `json:"is_paid"`
	VoucherID     *uint           `json:"voucher_id,omitempty"`
	Customer      CustomerView    `json:"customer"`
	Address       *AddressView    `json:"address,omitempty"`
	Lines         []LineView      `json:"lines"`
}

// CustomerView 下单用户
type CustomerView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddressView 收货地址
type AddressView struct {
	ID            uint   `json:"id"`
	RecipientName string `json:"recipient_name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
}

// LineView 订单行,已删除的图书/套装名称为空
type LineView struct {
	ID        uint            `json:"id"`
	BookID    *uint           `json:"book_id,omitempty"`
	BookTitle string          `json:"book_title,omitempty"`
	ComboID   *uint           `json:"combo_id,omitempty"`
	ComboName string          `json:"combo_name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Get 订单详情;非管理员只能查看自己的订单
func (uc *QueryOrdersUseCase) Get(ctx context.Context, id, requesterID uint, isAdmin bool) (*OrderView, error) {
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.IsOwnedBy(requesterID) {
		return nil, apperrors.ErrForbidden
	}
	views, err := uc.project(ctx, []*order.Order{o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List 全部订单(管理员)
func (uc *QueryOrdersUseCase) List(ctx context.Context) ([]OrderView, error) {
	orders, err := uc.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, orders)
}

// ListByCustomer 指定用户的订单
func (uc *QueryOrdersUseCase) ListByCustomer(ctx context.Context, userID uint) ([]OrderView, error) {
	orders, err := uc.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, orders)
}

// project 订单 → 视图
func (uc *QueryOrdersUseCase) project(ctx context.Context, orders []*order.Order) ([]OrderView, error) {
	var userIDs, addressIDs, bookIDs, comboIDs []uint
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		addressIDs = append(addressIDs, o.ShippingAddressID)
		for _, l := range o.Lines {
			if l.BookID != nil {
				bookIDs = append(bookIDs, *l.BookID)
			}
			if l.ComboID != nil {
				comboIDs = append(comboIDs, *l.ComboID)
			}
		}
	}

	users, err := uc.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	addrs, err := uc.addresses.FindByIDs(ctx, addressIDs)
	if err != nil {
		return nil, err
	}
	books, err := uc.books.FindByIDs(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	combos, err := uc.combos.FindByIDs(ctx, comboIDs)
	if err != nil {
		return nil, err
	}

	userMap := make(map[uint]*user.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}
	addrMap := make(map[uint]*address.Address, len(addrs))
	for _, a := range addrs {
		addrMap[a.ID] = a
	}
	titles := make(map[uint]string, len(books))
	for _, b := range books {
		titles[b.ID] = b.Title
	}
	names := make(map[uint]string, len(combos))
	for _, c := range combos {
		names[c.ID] = c.Name
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		v := OrderView{
			ID:            o.ID,
			OrderNo:       o.OrderNo,
			OrderDate:     o.OrderDate,
			Subtotal:      o.Subtotal,
			Discount:      o.Discount,
			Total:         o.Total,
			Status:        o.Status.String(),
			StatusLabel:   o.Status.Label(),
			PaymentMethod: o.PaymentMethod,
			IsPaid:        o.IsPaid,
			VoucherID:     o.VoucherID,
			Customer:      CustomerView{ID: o.UserID},
			Lines:         make([]LineView, len(o.Lines)),
		}
		if u, ok := userMap[o.UserID]; ok {
			v.Customer.Name = u.Name
			v.Customer.Email = u.Email
		}
		if a, ok := addrMap[o.ShippingAddressID]; ok {
			v.Address = &AddressView{ID: a.ID, RecipientName: a.RecipientName, Address: a.Address, Phone: a.Phone}
		}
		for j, l := range o.Lines {
			lv := LineView{
				ID:        l.ID,
				BookID:    l.BookID,
				ComboID:   l.ComboID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Amount:    l.Amount(),
			}
			if l.BookID != nil {
				lv.BookTitle = titles[*l.BookID]
			}
			if l.ComboID != nil {
				lv.ComboName = names[*l.ComboID]
			}
			v.Lines[j] = lv
		}
		views[i] = v
	}
	return views, nil
}
