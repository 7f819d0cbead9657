package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 创建订单(包含订单行),回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单行)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// List 全部订单,按下单时间倒序
	List(ctx context.Context) ([]*Order, error)

	// ListByUser 用户的订单,按下单时间倒序
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)

	// LockByID 悲观锁查询订单(SELECT ... FOR UPDATE)
	// 只能在事务内调用,锁在事务结束时释放
	LockByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 只更新状态与更新时间
	// 仅当库中状态仍为from时生效,否则返回ErrInvalidStatusTransition
	UpdateStatus(ctx context.Context, order *Order, from Status) error

	// Delete 删除订单及订单行
	Delete(ctx context.Context, id uint) error

	// Count 订单总数
	Count(ctx context.Context) (int64, error)
}

// Repositories 绑定到同一事务的仓储集合
type Repositories interface {
	Users() user.Repository
	Books() book.Repository
	Combos() combo.Repository
	Vouchers() voucher.Repository
	Addresses() address.Repository
	Orders() Repository
}

// UnitOfWork 事务边界
// fn内通过repos访问的所有仓储共享同一事务;fn返回error时整体回滚,返回nil时提交
//
//	err := uow.Do(ctx, func(ctx context.Context, repos order.Repositories) error {
//	    if err := inventory.NewAdjuster(repos.Books(), repos.Combos(), logger).Reserve(ctx, lines); err != nil {
//	        return err
//	    }
//	    return repos.Orders().Create(ctx, o)
//	})
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
