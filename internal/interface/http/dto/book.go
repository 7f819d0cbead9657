package dto

// BookForm 图书上架表单(multipart/form-data),封面文件字段为cover
type BookForm struct {
	Title         string `form:"title" binding:"required,max=200" example:"三体"`
	Author        string `form:"author" binding:"required,max=100" example:"刘慈欣"`
	GenreID       uint   `form:"genre_id" example:"1"`
	Price         string `form:"price" binding:"required" example:"23.50"`
	Stock         int    `form:"stock" binding:"min=0" example:"100"`
	PublishedDate string `form:"published_date" binding:"required" example:"2008-01-01"`
	Description   string `form:"description" binding:"max=5000"`
}

// UpdateBookForm 图书更新表单,未提交的字段保持不变
type UpdateBookForm struct {
	Title         *string `form:"title" binding:"omitempty,max=200"`
	Author        *string `form:"author" binding:"omitempty,max=100"`
	GenreID       *uint   `form:"genre_id"`
	Price         string  `form:"price"`
	Stock         *int    `form:"stock" binding:"omitempty,min=0"`
	PublishedDate string  `form:"published_date"`
	Description   *string `form:"description" binding:"omitempty,max=5000"`
}

// SearchBooksQuery 高级搜索参数
type SearchBooksQuery struct {
	Keyword        string `form:"keyword"`
	GenreID        uint   `form:"genre_id"`
	MinPrice       string `form:"min_price"`
	MaxPrice       string `form:"max_price"`
	PublishedAfter string `form:"published_after" example:"2020-01-01"`
	SortBy         string `form:"sort_by" binding:"omitempty,oneof=title price date"`
	Ascending      bool   `form:"ascending"`
}
