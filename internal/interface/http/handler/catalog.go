package handler

import (
	"github.com/gin-gonic/gin"

	appcombo "github.com/xiebiao/bookshop/internal/application/combo"
	appgenre "github.com/xiebiao/bookshop/internal/application/genre"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CatalogHandler 分类与套装
type CatalogHandler struct {
	genreUseCase *appgenre.GenreUseCase
	comboUseCase *appcombo.ComboUseCase
}

// NewCatalogHandler 创建分类与套装处理器
func NewCatalogHandler(genreUseCase *appgenre.GenreUseCase, comboUseCase *appcombo.ComboUseCase) *CatalogHandler {
	return &CatalogHandler{genreUseCase: genreUseCase, comboUseCase: comboUseCase}
}

// ListGenres 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Param        keyword query string false "名称关键词"
// @Success      200 {object} response.Response{data=[]appgenre.GenreView}
// @Router       /genres [get]
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	result, err := h.genreUseCase.List(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetGenre 分类详情
// @Summary      分类详情
// @Tags         分类
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=appgenre.GenreView}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /genres/{id} [get]
func (h *CatalogHandler) GetGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.genreUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SearchGenres 按名称搜索分类
// @Summary      搜索分类
// @Tags         分类
// @Produce      json
// @Param        keyword query string true "名称关键词"
// @Success      200 {object} response.Response{data=[]appgenre.GenreView}
// @Failure      400 {object} response.Response "缺少关键词"
// @Router       /genres/search [get]
func (h *CatalogHandler) SearchGenres(c *gin.Context) {
	result, err := h.genreUseCase.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateGenre 创建分类
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.GenreRequest true "分类"
// @Success      200 {object} response.Response{data=appgenre.GenreView}
// @Failure      409 {object} response.Response "名称已存在"
// @Router       /genres [post]
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.genreUseCase.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RenameGenre 修改分类名称
// @Summary      修改分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Param        request body dto.GenreRequest true "分类"
// @Success      200 {object} response.Response{data=appgenre.GenreView}
// @Router       /genres/{id} [put]
func (h *CatalogHandler) RenameGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.genreUseCase.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteGenre 删除分类,所属图书变为未分类
// @Summary      删除分类
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /genres/{id} [delete]
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.genreUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "分类已删除", nil)
}

// ListCombos 套装列表
// @Summary      套装列表
// @Tags         套装
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcombo.ComboView}
// @Router       /combos [get]
func (h *CatalogHandler) ListCombos(c *gin.Context) {
	result, err := h.comboUseCase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCombo 套装详情
// @Summary      套装详情
// @Tags         套装
// @Produce      json
// @Param        id path int true "套装ID"
// @Success      200 {object} response.Response{data=appcombo.ComboView}
// @Failure      404 {object} response.Response "套装不存在"
// @Router       /combos/{id} [get]
func (h *CatalogHandler) GetCombo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.comboUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCombo 创建套装
// @Summary      创建套装
// @Description  至少两本不同的已存在图书,可上传套装图片
// @Tags         套装
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name formData string true "名称"
// @Param        description formData string false "描述"
// @Param        book_ids formData []int true "图书ID" collectionFormat(multi)
// @Param        total_price formData string true "原价合计"
// @Param        discount_price formData string true "套装价"
// @Param        image formData file false "图片"
// @Success      200 {object} response.Response{data=appcombo.ComboView}
// @Failure      400 {object} response.Response "套装组成不合法"
// @Router       /combos [post]
func (h *CatalogHandler) CreateCombo(c *gin.Context) {
	req, closeImage, ok := h.bindCombo(c)
	if !ok {
		return
	}
	defer closeImage()

	result, err := h.comboUseCase.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCombo 更新套装
// @Summary      更新套装
// @Tags         套装
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "套装ID"
// @Param        name formData string true "名称"
// @Param        description formData string false "描述"
// @Param        book_ids formData []int true "图书ID" collectionFormat(multi)
// @Param        total_price formData string true "原价合计"
// @Param        discount_price formData string true "套装价"
// @Param        image formData file false "图片"
// @Success      200 {object} response.Response{data=appcombo.ComboView}
// @Failure      404 {object} response.Response "套装不存在"
// @Router       /combos/{id} [put]
func (h *CatalogHandler) UpdateCombo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, closeImage, ok := h.bindCombo(c)
	if !ok {
		return
	}
	defer closeImage()

	result, err := h.comboUseCase.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCombo 删除套装
// @Summary      删除套装
// @Tags         套装
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "套装ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "套装不存在"
// @Router       /combos/{id} [delete]
func (h *CatalogHandler) DeleteCombo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.comboUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "套装已删除", nil)
}

func (h *CatalogHandler) bindCombo(c *gin.Context) (appcombo.ComboRequest, func(), bool) {
	var form dto.ComboForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return appcombo.ComboRequest{}, nil, false
	}
	total, err := dto.RequireDecimal("total_price", form.TotalPrice)
	if err != nil {
		response.Error(c, err)
		return appcombo.ComboRequest{}, nil, false
	}
	discount, err := dto.RequireDecimal("discount_price", form.DiscountPrice)
	if err != nil {
		response.Error(c, err)
		return appcombo.ComboRequest{}, nil, false
	}
	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		response.Error(c, err)
		return appcombo.ComboRequest{}, nil, false
	}
	return appcombo.ComboRequest{
		Name:          form.Name,
		Description:   form.Description,
		BookIDs:       form.BookIDs,
		TotalPrice:    total,
		DiscountPrice: discount,
		Image:         image,
	}, closeImage, true
}
