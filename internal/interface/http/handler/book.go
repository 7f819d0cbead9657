package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	updateBookUseCase  *appbook.UpdateBookUseCase
	deleteBookUseCase  *appbook.DeleteBookUseCase
	queryBooksUseCase  *appbook.QueryBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
	queryBooksUseCase *appbook.QueryBooksUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		updateBookUseCase:  updateBookUseCase,
		deleteBookUseCase:  deleteBookUseCase,
		queryBooksUseCase:  queryBooksUseCase,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  全部图书,附带平均评分
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	result, err := h.queryBooksUseCase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryBooksUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  按书名/作者关键词、分类、价格区间、出版日期搜索,可按title|price|date排序
// @Tags         图书
// @Produce      json
// @Param        keyword query string false "书名或作者"
// @Param        genre_id query int false "分类ID"
// @Param        min_price query string false "最低价格"
// @Param        max_price query string false "最高价格"
// @Param        published_after query string false "出版日期不早于(YYYY-MM-DD)"
// @Param        sort_by query string false "排序字段" Enums(title, price, date)
// @Param        ascending query bool false "升序"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var q dto.SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}
	minPrice, err := dto.ParseDecimal("min_price", q.MinPrice)
	if err != nil {
		response.Error(c, err)
		return
	}
	maxPrice, err := dto.ParseDecimal("max_price", q.MaxPrice)
	if err != nil {
		response.Error(c, err)
		return
	}
	after, err := dto.ParseDate("published_after", q.PublishedAfter)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.queryBooksUseCase.Search(c.Request.Context(), appbook.SearchRequest{
		Keyword:        q.Keyword,
		GenreID:        q.GenreID,
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		PublishedAfter: after,
		SortBy:         q.SortBy,
		Ascending:      q.Ascending,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByGenre 分类下的图书
// @Summary      分类下的图书
// @Tags         图书
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=[]appbook.BookView}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /genres/{id}/books [get]
func (h *BookHandler) ListByGenre(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryBooksUseCase.ListByGenre(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PublishBook 图书上架
// @Summary      图书上架
// @Description  管理员上架图书,可同时上传封面(jpg/png/gif/webp)
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "书名"
// @Param        author formData string true "作者"
// @Param        genre_id formData int false "分类ID"
// @Param        price formData string true "价格"
// @Param        stock formData int false "库存"
// @Param        published_date formData string true "出版日期(YYYY-MM-DD)"
// @Param        description formData string false "描述"
// @Param        cover formData file false "封面"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return
	}
	price, err := dto.RequireDecimal("price", form.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	published, err := dto.RequireDate("published_date", form.PublishedDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	cover, closeCover, err := formUpload(c, "cover")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		Title:         form.Title,
		Author:        form.Author,
		GenreID:       form.GenreID,
		Price:         price,
		Stock:         form.Stock,
		PublishedDate: published,
		Description:   form.Description,
		Cover:         cover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  只更新提交的字段,上传新封面后删除旧封面
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        title formData string false "书名"
// @Param        author formData string false "作者"
// @Param        genre_id formData int false "分类ID"
// @Param        price formData string false "价格"
// @Param        stock formData int false "库存"
// @Param        published_date formData string false "出版日期(YYYY-MM-DD)"
// @Param        description formData string false "描述"
// @Param        cover formData file false "封面"
// @Success      200 {object} response.Response{data=appbook.BookView}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form dto.UpdateBookForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return
	}
	price, err := dto.ParseDecimal("price", form.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	published, err := dto.ParseDate("published_date", form.PublishedDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	cover, closeCover, err := formUpload(c, "cover")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeCover()

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID: id,
		Params: book.UpdateParams{
			Title:         form.Title,
			Author:        form.Author,
			GenreID:       form.GenreID,
			Price:         price,
			Stock:         form.Stock,
			PublishedDate: published,
			Description:   form.Description,
		},
		Cover: cover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteBookUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "图书已删除", nil)
}
