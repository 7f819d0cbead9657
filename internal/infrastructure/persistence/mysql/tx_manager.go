package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// TxManager 事务管理器,实现order.UnitOfWork
// fn收到的仓储全部绑定在同一个事务连接上,不通过context传递事务
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

var _ order.UnitOfWork = (*TxManager)(nil)

// Do 执行事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT
//
//	err := txManager.Do(ctx, func(ctx context.Context, repos order.Repositories) error {
//	    if _, err := repos.Books().LockByID(ctx, bookID); err != nil {
//	        return err
//	    }
//	    return repos.Orders().Create(ctx, o)
//	})
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context, repos order.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) Users() user.Repository { return NewUserRepository(r.tx) }
func (r txRepositories) Books() book.Repository { return NewBookRepository(r.tx) }
func (r txRepositories) Combos() combo.Repository { return NewComboRepository(r.tx) }
func (r txRepositories) Vouchers() voucher.Repository { return NewVoucherRepository(r.tx) }
func (r txRepositories) Addresses() address.Repository { return NewAddressRepository(r.tx) }
func (r txRepositories) Orders() order.Repository { return NewOrderRepository(r.tx) }
