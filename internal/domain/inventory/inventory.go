// Package inventory 下单扣减与取消回补库存
//
// 所有订单行(直接图书行与套装行)先按图书汇总需求量,
// 再按图书ID升序加行锁、校验、扣减。固定加锁顺序避免并发下单互相死锁。
// 调用方必须在同一事务中使用Adjuster,任一步失败由事务整体回滚。
package inventory

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
)

// Kind 订单行类型
type Kind int

const (
	KindBook Kind = iota + 1
	KindCombo
)

// Line 库存行
type Line struct {
	Kind     Kind
	RefID    uint // 图书ID或套装ID
	Quantity int
}

// BookStore 库存相关的图书操作
type BookStore interface {
	LockByID(ctx context.Context, id uint) (*book.Book, error)
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// ComboStore 套装查询
type ComboStore interface {
	FindByID(ctx context.Context, id uint) (*combo.Combo, error)
}

// Adjuster 库存调整器
type Adjuster struct {
	books  BookStore
	combos ComboStore
	logger *zap.Logger
}

// NewAdjuster 创建库存调整器,books/combos应绑定到当前事务
func NewAdjuster(books BookStore, combos ComboStore, logger *zap.Logger) *Adjuster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adjuster{books: books, combos: combos, logger: logger}
}

// demand 单本图书的汇总需求
type demand struct {
	quantity int
	direct   bool // 是否有直接图书行
	comboID  uint // 最近一个引用该图书的套装
}

// Reserve 校验并扣减库存
//
// 错误:
//   - 直接图书行的图书不存在或库存不足 → book.ErrInsufficientStock
//   - 套装不存在 → combo.ErrComboNotFound
//   - 套装成分图书不存在 → combo.ErrInvalidCombo
//   - 套装成分图书库存不足 → book.ErrInsufficientStock(消息中带书名)
func (a *Adjuster) Reserve(ctx context.Context, lines []Line) error {
	need, err := a.expand(ctx, lines, false)
	if err != nil {
		return err
	}

	ids := sortedIDs(need)

	// 1. 升序加锁并校验
	for _, id := range ids {
		dm := need[id]
		b, err := a.books.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, book.ErrBookNotFound) {
				if dm.direct {
					return book.ErrInsufficientStock.Withf("图书%d不存在", id)
				}
				return combo.ErrInvalidCombo.Withf("套装%d包含不存在的图书%d", dm.comboID, id)
			}
			return err
		}
		if b.Stock < dm.quantity {
			return book.ErrInsufficientStock.Withf("图书《%s》库存不足，当前库存:%d，需要:%d", b.Title, b.Stock, dm.quantity)
		}
	}

	// 2. 扣减(行已被锁定,条件更新不应失败)
	for _, id := range ids {
		if err := a.books.UpdateStock(ctx, id, -need[id].quantity); err != nil {
			return err
		}
	}
	return nil
}

// Release 回补库存(订单取消)
// 已删除的套装或图书无法回补,记录日志后跳过
func (a *Adjuster) Release(ctx context.Context, lines []Line) error {
	need, err := a.expand(ctx, lines, true)
	if err != nil {
		return err
	}

	for _, id := range sortedIDs(need) {
		err := a.books.UpdateStock(ctx, id, need[id].quantity)
		if errors.Is(err, book.ErrBookNotFound) {
			a.logger.Warn("回补库存时图书已不存在，跳过", zap.Uint("book_id", id), zap.Int("quantity", need[id].quantity))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// expand 展开套装并按图书汇总数量
func (a *Adjuster) expand(ctx context.Context, lines []Line, skipMissing bool) (map[uint]*demand, error) {
	need := make(map[uint]*demand)
	add := func(id uint, qty int) *demand {
		dm, ok := need[id]
		if !ok {
			dm = &demand{}
			need[id] = dm
		}
		dm.quantity += qty
		return dm
	}

	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, book.ErrInvalidQuantity
		}
		switch l.Kind {
		case KindBook:
			add(l.RefID, l.Quantity).direct = true
		case KindCombo:
			c, err := a.combos.FindByID(ctx, l.RefID)
			if err != nil {
				if errors.Is(err, combo.ErrComboNotFound) && skipMissing {
					a.logger.Warn("回补库存时套装已不存在，跳过", zap.Uint("combo_id", l.RefID))
					continue
				}
				return nil, err
			}
			if len(c.BookIDs) == 0 {
				return nil, combo.ErrInvalidCombo.Withf("套装%d没有成分图书", c.ID)
			}
			for _, bid := range c.BookIDs {
				add(bid, l.Quantity).comboID = c.ID
			}
		default:
			return nil, combo.ErrInvalidCombo.Withf("未知的订单行类型: %d", l.Kind)
		}
	}
	return need, nil
}

func sortedIDs(need map[uint]*demand) []uint {
	ids := make([]uint, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
