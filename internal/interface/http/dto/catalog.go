package dto

import "github.com/shopspring/decimal"

// GenreRequest 创建/修改分类
type GenreRequest struct {
	Name string `json:"name" binding:"required,max=50" example:"科幻"`
}

// ComboForm 套装表单(multipart/form-data),图片文件字段为image
type ComboForm struct {
	Name          string `form:"name" binding:"required,max=200" example:"入门套装"`
	Description   string `form:"description" binding:"max=5000"`
	BookIDs       []uint `form:"book_ids" binding:"required,min=2"`
	TotalPrice    string `form:"total_price" binding:"required" example:"40.00"`
	DiscountPrice string `form:"discount_price" binding:"required" example:"35.00"`
}

// VoucherRequest 创建优惠券
type VoucherRequest struct {
	Code            string          `json:"code" binding:"required,max=50" example:"SAVE10"`
	DiscountPercent decimal.Decimal `json:"discount_percent" swaggertype:"string" example:"10"`
	MaxDiscount     decimal.Decimal `json:"max_discount" swaggertype:"string" example:"2.00"`
	MinOrderAmount  decimal.Decimal `json:"min_order_amount" swaggertype:"string" example:"20.00"`
	ExpiryDate      string          `json:"expiry_date" binding:"required,datetime=2006-01-02" example:"2026-12-31"`
	UsageLimit      int             `json:"usage_limit" binding:"required,min=1" example:"100"`
}

// AddressRequest 新增收货地址
type AddressRequest struct {
	RecipientName string `json:"recipient_name" binding:"required,max=100" example:"张三"`
	Address       string `json:"address" binding:"required,max=255" example:"北京市海淀区1号"`
	Phone         string `json:"phone" binding:"required,max=20" example:"13800000000"`
}

// ReviewRequest 发表/修改评论
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	Comment string `json:"comment" binding:"max=1000" example:"非常好看"`
}

// FavoriteRequest 收藏图书
type FavoriteRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}
