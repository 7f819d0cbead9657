package book

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository 图书仓储接口
// 由domain层定义接口,infrastructure层实现
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量查询,不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// Update 更新图书信息,不写库存列
	// 库存只通过UpdateStock/SetStock修改,避免覆盖并发下单的扣减
	Update(ctx context.Context, book *Book) error

	// SetStock 管理员直接设置库存,stock不能为负
	SetStock(ctx context.Context, id uint, stock int) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// List 查询全部图书
	List(ctx context.Context) ([]*Book, error)

	// Search 条件搜索
	Search(ctx context.Context, params SearchParams) ([]*Book, error)

	// ListLatest 按出版日期倒序取前limit本
	ListLatest(ctx context.Context, limit int) ([]*Book, error)

	// Count 图书总数
	Count(ctx context.Context) (int64, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
	// 只能在事务内调用,锁在事务结束时释放
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子更新库存
	// delta为正数表示增加,负数表示减少;结果为负时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// 排序字段
const (
	SortByTitle = "title"
	SortByPrice = "price"
	SortByDate  = "date"
)

// SearchParams 搜索参数,零值字段不参与过滤
type SearchParams struct {
	Keyword        string           // 匹配书名或作者
	GenreID        uint             // 分类
	MinPrice       *decimal.Decimal // 最低价(含)
	MaxPrice       *decimal.Decimal // 最高价(含)
	PublishedAfter *time.Time       // 出版日期不早于
	SortBy         string           // title | price | date,空则按ID
	Ascending      bool
}

// Validate 校验搜索参数
func (p SearchParams) Validate() error {
	switch p.SortBy {
	case "", SortByTitle, SortByPrice, SortByDate:
	default:
		return ErrInvalidSearch.Withf("不支持的排序字段: %s", p.SortBy)
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		return ErrInvalidSearch.Withf("最低价不能高于最高价")
	}
	if (p.MinPrice != nil && p.MinPrice.IsNegative()) || (p.MaxPrice != nil && p.MaxPrice.IsNegative()) {
		return ErrInvalidSearch.Withf("价格区间不能为负数")
	}
	return nil
}
