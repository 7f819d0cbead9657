package dto

import "github.com/shopspring/decimal"

// PlaceOrderRequest 下单请求
// address_id与新地址(recipient_name/address/phone)二选一
type PlaceOrderRequest struct {
	AddressID     uint             `json:"address_id" example:"0"`
	RecipientName string           `json:"recipient_name" binding:"max=100" example:"张三"`
	Address       string           `json:"address" binding:"max=255" example:"北京市海淀区1号"`
	Phone         string           `json:"phone" binding:"max=20" example:"13800000000"`
	PaymentMethod string           `json:"payment_method" binding:"required,max=50" example:"COD"`
	IsPaid        bool             `json:"is_paid"`
	Items         []PlaceOrderItem `json:"items" binding:"required,min=1,max=50,dive"`
	VoucherCode   string           `json:"voucher_code" binding:"max=50" example:"SAVE10"`
}

// PlaceOrderItem 订单行,book_id与combo_id二选一
type PlaceOrderItem struct {
	BookID    uint            `json:"book_id" example:"1"`
	ComboID   uint            `json:"combo_id" example:"0"`
	Quantity  int             `json:"quantity" binding:"required,min=1,max=999" example:"3"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"10.00"`
}

// UpdateOrderStatusRequest 更新订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus" example:"shipping"`
}
