package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// db可以是普通连接,也可以是UnitOfWork创建的事务连接
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	if len(ids) == 0 {
		return []*book.Book{}, nil
	}
	var models []BookModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntities(models), nil
}

// bookInfoColumns Update写入的列,stock不在其中
var bookInfoColumns = []string{
	"title", "author", "genre_id", "price", "published_date", "cover_image", "description", "updated_at",
}

// Update 用Select限定列,零值(如genre_id为NULL)也会写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	result := r.db.WithContext(ctx).Model(&BookModel{ID: b.ID}).
		Select(bookInfoColumns).
		Updates(model)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, b.ID); err != nil {
			return err
		}
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// SetStock 覆盖库存
func (r *bookRepository) SetStock(ctx context.Context, id uint, stock int) error {
	if stock < 0 {
		return book.ErrInvalidStock
	}
	result := r.db.WithContext(ctx).Model(&BookModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":      stock,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除图书
// 外键已声明级联,这里显式删除依赖行,使未建外键的旧库行为一致
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []interface{}{&ComboItemModel{}, &ReviewModel{}, &FavoriteModel{}} {
			if err := tx.Where("book_id = ?", id).Delete(dep).Error; err != nil {
				return apperrors.Wrap(err, "删除图书关联数据失败")
			}
		}

		result := tx.Delete(&BookModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除图书失败")
		}
		if result.RowsAffected == 0 {
			return book.ErrBookNotFound
		}
		return nil
	})
}

func (r *bookRepository) List(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(models), nil
}

// Search 条件搜索,零值条件不参与过滤
func (r *bookRepository) Search(ctx context.Context, p book.SearchParams) ([]*book.Book, error) {
	query := r.db.WithContext(ctx).Model(&BookModel{})

	if p.Keyword != "" {
		keyword := "%" + p.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", keyword, keyword)
	}
	if p.GenreID != 0 {
		query = query.Where("genre_id = ?", p.GenreID)
	}
	if p.MinPrice != nil {
		query = query.Where("price >= ?", *p.MinPrice)
	}
	if p.MaxPrice != nil {
		query = query.Where("price <= ?", *p.MaxPrice)
	}
	if p.PublishedAfter != nil {
		query = query.Where("published_date >= ?", *p.PublishedAfter)
	}

	direction := "DESC"
	if p.Ascending {
		direction = "ASC"
	}
	switch p.SortBy {
	case book.SortByTitle:
		query = query.Order("title " + direction)
	case book.SortByPrice:
		query = query.Order("price " + direction)
	case book.SortByDate:
		query = query.Order("published_date " + direction)
	}
	query = query.Order("id")

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "搜索图书失败")
	}
	return toBookEntities(models), nil
}

// ListLatest 按出版日期倒序
func (r *bookRepository) ListLatest(ctx context.Context, limit int) ([]*book.Book, error) {
	query := r.db.WithContext(ctx).Order("published_date DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询最新图书失败")
	}
	return toBookEntities(models), nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&BookModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计图书失败")
	}
	return n, nil
}

// LockByID SELECT ... FOR UPDATE,必须在事务连接上调用
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateStock 原子更新库存
// UPDATE books SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或库存不足,再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if isNotFound(err) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}
	return nil
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		GenreID:       uintPtr(b.GenreID),
		Price:         b.Price,
		Stock:         b.Stock,
		PublishedDate: b.PublishedDate,
		CoverImage:    b.CoverImage,
		Description:   b.Description,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		Title:         m.Title,
		Author:        m.Author,
		GenreID:       uintValue(m.GenreID),
		Price:         m.Price,
		Stock:         m.Stock,
		PublishedDate: m.PublishedDate,
		CoverImage:    m.CoverImage,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
