// Package combo 图书套装
// 一个套装由若干本不同的图书组成,每售出一套,每本成分图书各消耗1本库存
package combo

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Combo 套装实体
// TotalPrice/DiscountPrice仅用于展示,下单金额以订单行单价为准
type Combo struct {
	ID            uint
	Name          string
	Description   string
	BookIDs       []uint // 成分图书,去重后按添加顺序保存
	TotalPrice    decimal.Decimal
	DiscountPrice decimal.Decimal
	Image         string // 图片存储引用
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var (
	// ErrComboNotFound 套装不存在
	ErrComboNotFound = apperrors.New(apperrors.ErrCodeComboNotFound, "套装不存在")

	// ErrInvalidCombo 套装组成不合法(包含不存在的图书)
	ErrInvalidCombo = apperrors.New(apperrors.ErrCodeInvalidCombo, "套装组成不合法")

	// ErrTooFewBooks 套装至少包含两本不同的图书
	ErrTooFewBooks = apperrors.New(apperrors.ErrCodeInvalidParams, "套装至少包含两本不同的图书")

	// ErrInvalidName 套装名称为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "套装名称不能为空")

	// ErrInvalidPrice 价格为负
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "套装价格不能为负数")
)

// New 创建套装
func New(name, description string, bookIDs []uint, totalPrice, discountPrice decimal.Decimal) (*Combo, error) {
	now := time.Now()
	c := &Combo{
		Name:          strings.TrimSpace(name),
		Description:   description,
		BookIDs:       dedupe(bookIDs),
		TotalPrice:    totalPrice,
		DiscountPrice: discountPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 校验实体不变量(不含成分图书是否存在)
func (c *Combo) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if len(c.BookIDs) < 2 {
		return ErrTooFewBooks
	}
	if c.TotalPrice.IsNegative() || c.DiscountPrice.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Update 替换套装内容
func (c *Combo) Update(name, description string, bookIDs []uint, totalPrice, discountPrice decimal.Decimal) error {
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.BookIDs = dedupe(bookIDs)
	c.TotalPrice = totalPrice
	c.DiscountPrice = discountPrice
	c.UpdatedAt = time.Now()
	return c.Validate()
}

// Contains 是否包含指定图书
func (c *Combo) Contains(bookID uint) bool {
	for _, id := range c.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Repository 套装仓储接口
// 套装与成分(combo_items)作为一个聚合保存
type Repository interface {
	Create(ctx context.Context, c *Combo) error
	// FindByID 包含成分图书ID,不存在返回ErrComboNotFound
	FindByID(ctx context.Context, id uint) (*Combo, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*Combo, error)
	// Update 更新基本信息并整体替换成分
	Update(ctx context.Context, c *Combo) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Combo, error)
	Count(ctx context.Context) (int64, error)
}
