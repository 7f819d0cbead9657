package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrCustomerNotFound 下单用户不存在
	ErrCustomerNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "下单用户不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidStatus 未知状态
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "订单状态不合法")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidLine 订单行必须且只能指定图书或套装之一
	ErrInvalidLine = apperrors.New(apperrors.ErrCodeInvalidParams, "订单行必须且只能指定图书或套装之一")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidUnitPrice 单价为负
	ErrInvalidUnitPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "单价不能为负数")

	// ErrPriceMismatch 单价与目录价不一致
	ErrPriceMismatch = apperrors.New(apperrors.ErrCodePriceMismatch, "商品价格已变动，请刷新后重新下单")

	// ErrInvalidShipping 未提供收货信息
	ErrInvalidShipping = apperrors.New(apperrors.ErrCodeInvalidParams, "请选择收货地址或填写收货信息")

	// ErrInvalidPaymentMethod 支付方式为空
	ErrInvalidPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "支付方式不能为空")
)
