package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appaddress "github.com/xiebiao/bookshop/internal/application/address"
	appfavorite "github.com/xiebiao/bookshop/internal/application/favorite"
	appreview "github.com/xiebiao/bookshop/internal/application/review"
	appvoucher "github.com/xiebiao/bookshop/internal/application/voucher"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// AccountHandler 优惠券、收货地址、评论与收藏
type AccountHandler struct {
	voucherUseCase  *appvoucher.VoucherUseCase
	addressUseCase  *appaddress.AddressUseCase
	reviewUseCase   *appreview.ReviewUseCase
	favoriteUseCase *appfavorite.FavoriteUseCase
}

// NewAccountHandler 创建处理器
func NewAccountHandler(
	voucherUseCase *appvoucher.VoucherUseCase,
	addressUseCase *appaddress.AddressUseCase,
	reviewUseCase *appreview.ReviewUseCase,
	favoriteUseCase *appfavorite.FavoriteUseCase,
) *AccountHandler {
	return &AccountHandler{
		voucherUseCase:  voucherUseCase,
		addressUseCase:  addressUseCase,
		reviewUseCase:   reviewUseCase,
		favoriteUseCase: favoriteUseCase,
	}
}

// ---------- 优惠券 ----------

// ListVouchers 优惠券列表(管理员)
// @Summary      优惠券列表
// @Tags         优惠券
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appvoucher.VoucherView}
// @Router       /vouchers [get]
func (h *AccountHandler) ListVouchers(c *gin.Context) {
	result, err := h.voucherUseCase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetVoucher 按券码查询
// @Summary      查询优惠券
// @Tags         优惠券
// @Produce      json
// @Param        code path string true "券码"
// @Success      200 {object} response.Response{data=appvoucher.VoucherView}
// @Failure      404 {object} response.Response "优惠券不存在"
// @Router       /vouchers/{code} [get]
func (h *AccountHandler) GetVoucher(c *gin.Context) {
	result, err := h.voucherUseCase.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateVoucher 创建优惠券(管理员)
// @Summary      创建优惠券
// @Tags         优惠券
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.VoucherRequest true "优惠券"
// @Success      200 {object} response.Response{data=appvoucher.VoucherView}
// @Failure      400 {object} response.Response "参数不合法"
// @Failure      409 {object} response.Response "券码已存在"
// @Router       /vouchers [post]
func (h *AccountHandler) CreateVoucher(c *gin.Context) {
	var req dto.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	expiry, err := time.ParseInLocation(dto.DateLayout, req.ExpiryDate, time.Local)
	if err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.voucherUseCase.Create(c.Request.Context(), appvoucher.CreateVoucherRequest{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		MaxDiscount:     req.MaxDiscount,
		MinOrderAmount:  req.MinOrderAmount,
		ExpiryDate:      expiry,
		UsageLimit:      req.UsageLimit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteVoucher 删除优惠券(管理员)
// @Summary      删除优惠券
// @Tags         优惠券
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "优惠券ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "优惠券不存在"
// @Router       /vouchers/{id} [delete]
func (h *AccountHandler) DeleteVoucher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.voucherUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "优惠券已删除", nil)
}

// ---------- 收货地址 ----------

// ListAddresses 全部收货地址(管理员)
// @Summary      全部收货地址
// @Tags         收货地址
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appaddress.AddressView}
// @Router       /addresses [get]
func (h *AccountHandler) ListAddresses(c *gin.Context) {
	result, err := h.addressUseCase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyAddresses 当前用户的收货地址
// @Summary      我的收货地址
// @Tags         收货地址
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appaddress.AddressView}
// @Router       /addresses/mine [get]
func (h *AccountHandler) ListMyAddresses(c *gin.Context) {
	result, err := h.addressUseCase.ListByUser(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateAddress 新增收货地址
// @Summary      新增收货地址
// @Tags         收货地址
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddressRequest true "地址"
// @Success      200 {object} response.Response{data=appaddress.AddressView}
// @Failure      400 {object} response.Response "地址信息不完整"
// @Router       /addresses [post]
func (h *AccountHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.addressUseCase.Create(c.Request.Context(), middleware.MustGetUserID(c), req.RecipientName, req.Address, req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateAddress 修改收货地址
// @Summary      修改收货地址
// @Description  只有地址所属用户可以修改
// @Tags         收货地址
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                true "地址ID"
// @Param        request body dto.AddressRequest true "地址"
// @Success      200 {object} response.Response{data=appaddress.AddressView}
// @Failure      403 {object} response.Response "不是本人的地址"
// @Failure      404 {object} response.Response "地址不存在"
// @Router       /addresses/{id} [put]
func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.addressUseCase.Update(c.Request.Context(), id, middleware.MustGetUserID(c), req.RecipientName, req.Address, req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAddress 删除收货地址,所属用户或管理员
// @Summary      删除收货地址
// @Tags         收货地址
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "地址ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "地址已被订单使用"
// @Failure      403 {object} response.Response "无权删除"
// @Router       /addresses/{id} [delete]
func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.addressUseCase.Delete(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "收货地址已删除", nil)
}

// ---------- 评论 ----------

// ListReviews 图书评论
// @Summary      图书评论
// @Description  评论列表与平均评分
// @Tags         评论
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appreview.BookReviews}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id}/reviews [get]
func (h *AccountHandler) ListReviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.reviewUseCase.ListByBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetReview 评论详情
// @Summary      评论详情
// @Tags         评论
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{data=appreview.ReviewView}
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /reviews/{id} [get]
func (h *AccountHandler) GetReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.reviewUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateReview 发表评论
// @Summary      发表评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.ReviewRequest true "评论"
// @Success      200 {object} response.Response{data=appreview.ReviewView}
// @Failure      400 {object} response.Response "评分超出范围"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id}/reviews [post]
func (h *AccountHandler) CreateReview(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.reviewUseCase.Create(c.Request.Context(), bookID, middleware.MustGetUserID(c), req.Rating, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateReview 修改评论,只能修改自己的评论
// @Summary      修改评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Param        request body dto.ReviewRequest true "评论"
// @Success      200 {object} response.Response{data=appreview.ReviewView}
// @Failure      403 {object} response.Response "不是自己的评论"
// @Router       /reviews/{id} [put]
func (h *AccountHandler) UpdateReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.reviewUseCase.Update(c.Request.Context(), id, middleware.MustGetUserID(c), req.Rating, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview 删除评论,作者本人或管理员
// @Summary      删除评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权删除"
// @Router       /reviews/{id} [delete]
func (h *AccountHandler) DeleteReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewUseCase.Delete(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论已删除", nil)
}

// ---------- 收藏 ----------

// ListFavorites 我的收藏
// @Summary      我的收藏
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appfavorite.FavoriteView}
// @Router       /favorites [get]
func (h *AccountHandler) ListFavorites(c *gin.Context) {
	result, err := h.favoriteUseCase.List(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddFavorite 收藏图书
// @Summary      收藏图书
// @Tags         收藏
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.FavoriteRequest true "图书"
// @Success      200 {object} response.Response{data=appfavorite.FavoriteView}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "已收藏"
// @Router       /favorites [post]
func (h *AccountHandler) AddFavorite(c *gin.Context) {
	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.favoriteUseCase.Add(c.Request.Context(), middleware.MustGetUserID(c), req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveFavorite 按收藏ID取消收藏
// @Summary      取消收藏
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "收藏ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "不是自己的收藏"
// @Router       /favorites/{id} [delete]
func (h *AccountHandler) RemoveFavorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteUseCase.Remove(c.Request.Context(), id, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "已取消收藏", nil)
}

// RemoveFavoriteByBook 按图书取消收藏
// @Summary      按图书取消收藏
// @Tags         收藏
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "未收藏"
// @Router       /favorites/books/{id} [delete]
func (h *AccountHandler) RemoveFavoriteByBook(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteUseCase.RemoveByBook(c.Request.Context(), middleware.MustGetUserID(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "已取消收藏", nil)
}
