package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrderUseCase   *apporder.PlaceOrderUseCase
	queryOrdersUseCase  *apporder.QueryOrdersUseCase
	updateStatusUseCase *apporder.UpdateStatusUseCase
	deleteOrderUseCase  *apporder.DeleteOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrderUseCase *apporder.PlaceOrderUseCase,
	queryOrdersUseCase *apporder.QueryOrdersUseCase,
	updateStatusUseCase *apporder.UpdateStatusUseCase,
	deleteOrderUseCase *apporder.DeleteOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrderUseCase:   placeOrderUseCase,
		queryOrdersUseCase:  queryOrdersUseCase,
		updateStatusUseCase: updateStatusUseCase,
		deleteOrderUseCase:  deleteOrderUseCase,
	}
}

// PlaceOrder 下单
// @Summary      下单
// @Description  在一个事务内完成:校验客户、计算优惠、按图书ID升序锁行扣减库存(套装展开为成分图书)、
// @Description  保存收货地址、写入订单、累加优惠券使用次数。任一步失败整体回滚。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=apporder.PlaceOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误、库存不足、优惠券不可用、单价不一致"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "客户、套装或地址不存在"
// @Router       /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	items := make([]apporder.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.PlaceOrderItem{
			BookID:    item.BookID,
			ComboID:   item.ComboID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	result, err := h.placeOrderUseCase.Execute(c.Request.Context(), apporder.PlaceOrderRequest{
		UserID: middleware.MustGetUserID(c),
		Shipping: apporder.Shipping{
			AddressID:     req.AddressID,
			RecipientName: req.RecipientName,
			Address:       req.Address,
			Phone:         req.Phone,
		},
		PaymentMethod: req.PaymentMethod,
		IsPaid:        req.IsPaid,
		Items:         items,
		VoucherCode:   req.VoucherCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 全部订单(管理员)
// @Summary      全部订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.OrderView}
// @Failure      403 {object} response.Response "非管理员"
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	result, err := h.queryOrdersUseCase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyOrders 当前用户的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.OrderView}
// @Router       /orders/mine [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	result, err := h.queryOrdersUseCase.ListByCustomer(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCustomerOrders 指定客户的订单(管理员)
// @Summary      客户订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "客户ID"
// @Success      200 {object} response.Response{data=[]apporder.OrderView}
// @Router       /customers/{id}/orders [get]
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryOrdersUseCase.ListByCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情,普通用户只能查看自己的订单
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderView}
// @Failure      403 {object} response.Response "不是自己的订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryOrdersUseCase.Get(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus 更新订单状态(管理员)
// @Summary      更新订单状态
// @Description  pending→confirmed→shipping→delivered,pending/confirmed可取消;取消时回补库存并归还优惠券次数
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.UpdateStatusResponse}
// @Failure      400 {object} response.Response "状态不合法或不允许流转"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteOrder 删除订单(管理员),不回补库存
// @Summary      删除订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteOrderUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "订单已删除", nil)
}
