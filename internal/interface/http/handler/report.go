package handler

import (
	"github.com/gin-gonic/gin"

	appreport "github.com/xiebiao/bookshop/internal/application/report"
	"github.com/xiebiao/bookshop/pkg/response"
)

// ReportHandler 报表
type ReportHandler struct {
	reportUseCase *appreport.ReportUseCase
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reportUseCase *appreport.ReportUseCase) *ReportHandler {
	return &ReportHandler{reportUseCase: reportUseCase}
}

// BestSellers 畅销书
// @Summary      畅销书
// @Description  按销量(直接购买+套装成分)倒序,取前10
// @Tags         报表
// @Produce      json
// @Success      200 {object} response.Response{data=[]appreport.BestSellerView}
// @Router       /reports/best-sellers [get]
func (h *ReportHandler) BestSellers(c *gin.Context) {
	result, err := h.reportUseCase.BestSellers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Latest 最新上架
// @Summary      新书
// @Tags         报表
// @Produce      json
// @Success      200 {object} response.Response{data=[]appreport.LatestView}
// @Router       /reports/latest [get]
func (h *ReportHandler) Latest(c *gin.Context) {
	result, err := h.reportUseCase.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// TopRated 高分图书
// @Summary      高分图书
// @Tags         报表
// @Produce      json
// @Success      200 {object} response.Response{data=[]appreport.TopRatedView}
// @Router       /reports/top-rated [get]
func (h *ReportHandler) TopRated(c *gin.Context) {
	result, err := h.reportUseCase.TopRated(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Revenue 营收统计(管理员)
// @Summary      营收统计
// @Description  只统计已送达订单,标签按时间升序
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Param        period path string true "统计周期" Enums(weekly, monthly, yearly)
// @Success      200 {object} response.Response{data=[]appreport.RevenueView}
// @Failure      400 {object} response.Response "不支持的周期"
// @Router       /reports/revenue/{period} [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	result, err := h.reportUseCase.Revenue(c.Request.Context(), c.Param("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Dashboard 后台概览(管理员)
// @Summary      后台概览
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appreport.DashboardView}
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	result, err := h.reportUseCase.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
