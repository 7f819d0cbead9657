package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书实体(聚合根)
// 价格使用decimal,与数据库decimal(10,2)一一对应
type Book struct {
	ID            uint
	Title         string          // 书名
	Author        string          // 作者
	GenreID       uint            // 分类ID,0表示未分类
	Price         decimal.Decimal // 价格,>=0
	Stock         int             // 库存数量,>=0
	PublishedDate time.Time       // 出版日期
	CoverImage    string          // 封面存储引用(由storage解析为URL)
	Description   string          // 图书描述
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(title, author string, genreID uint, price decimal.Decimal, stock int, publishedDate time.Time, description string) *Book {
	now := time.Now()
	return &Book{
		Title:         strings.TrimSpace(title),
		Author:        strings.TrimSpace(author),
		GenreID:       genreID,
		Price:         price,
		Stock:         stock,
		PublishedDate: publishedDate,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate 校验实体不变量
func (b *Book) Validate() error {
	if b.Title == "" || len(b.Title) > 200 {
		return ErrInvalidTitle
	}
	if b.Author == "" {
		return ErrInvalidAuthor
	}
	if b.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if b.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// UpdateParams 更新参数,nil字段保持不变
type UpdateParams struct {
	Title         *string
	Author        *string
	GenreID       *uint
	Price         *decimal.Decimal
	Stock         *int
	PublishedDate *time.Time
	Description   *string
}

// Apply 应用更新并重新校验
func (b *Book) Apply(p UpdateParams) error {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.GenreID != nil {
		b.GenreID = *p.GenreID
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	b.UpdatedAt = time.Now()
	return b.Validate()
}
