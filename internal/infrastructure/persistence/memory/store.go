// Package memory 仓储接口的内存实现
//
// 用于单元测试与无数据库的本地演示。所有数据保存在一个Store中:
//   - 普通仓储调用各自加锁
//   - UnitOfWork.Do持有全局锁执行整个函数,失败时恢复快照
//
// 全局锁使事务完全串行,语义上等价于对涉及的每一行加了行锁。
package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// Store 内存数据库
type Store struct {
	mu       sync.Mutex
	data     *dataset
	failures map[string]error
}

type dataset struct {
	seq       map[string]uint
	users     map[uint]*user.User
	books     map[uint]*book.Book
	genres    map[uint]*genre.Genre
	combos    map[uint]*combo.Combo
	vouchers  map[uint]*voucher.Voucher
	addresses map[uint]*address.Address
	orders    map[uint]*order.Order
	reviews   map[uint]*review.Review
	favorites map[uint]*favorite.Favorite
}

// NewStore 创建空的内存数据库
func NewStore() *Store {
	return &Store{
		data: &dataset{
			seq:       map[string]uint{},
			users:     map[uint]*user.User{},
			books:     map[uint]*book.Book{},
			genres:    map[uint]*genre.Genre{},
			combos:    map[uint]*combo.Combo{},
			vouchers:  map[uint]*voucher.Voucher{},
			addresses: map[uint]*address.Address{},
			orders:    map[uint]*order.Order{},
			reviews:   map[uint]*review.Review{},
			favorites: map[uint]*favorite.Favorite{},
		},
		failures: map[string]error{},
	}
}

// FailNext 让下一次名为op的操作(如"orders.Create")返回err,用于测试回滚
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// injected 消费一次注入的错误,调用方已持有锁
func (s *Store) injected(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

// guard 非事务调用加锁;事务内调用时锁已由Do持有
func (s *Store) guard(tx bool) func() {
	if tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (d *dataset) nextID(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// clone 深拷贝,用于事务回滚
func (d *dataset) clone() *dataset {
	c := &dataset{
		seq:       make(map[string]uint, len(d.seq)),
		users:     make(map[uint]*user.User, len(d.users)),
		books:     make(map[uint]*book.Book, len(d.books)),
		genres:    make(map[uint]*genre.Genre, len(d.genres)),
		combos:    make(map[uint]*combo.Combo, len(d.combos)),
		vouchers:  make(map[uint]*voucher.Voucher, len(d.vouchers)),
		addresses: make(map[uint]*address.Address, len(d.addresses)),
		orders:    make(map[uint]*order.Order, len(d.orders)),
		reviews:   make(map[uint]*review.Review, len(d.reviews)),
		favorites: make(map[uint]*favorite.Favorite, len(d.favorites)),
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range d.books {
		c.books[k] = copyBook(v)
	}
	for k, v := range d.genres {
		g := *v
		c.genres[k] = &g
	}
	for k, v := range d.combos {
		c.combos[k] = copyCombo(v)
	}
	for k, v := range d.vouchers {
		c.vouchers[k] = copyVoucher(v)
	}
	for k, v := range d.addresses {
		a := *v
		c.addresses[k] = &a
	}
	for k, v := range d.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range d.reviews {
		r := *v
		c.reviews[k] = &r
	}
	for k, v := range d.favorites {
		f := *v
		c.favorites[k] = &f
	}
	return c
}

// Do 实现order.UnitOfWork
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos order.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, txRepos{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

type txRepos struct {
	s *Store
}

func (r txRepos) Users() user.Repository { return &userRepo{s: r.s, tx: true} }
func (r txRepos) Books() book.Repository { return &bookRepo{s: r.s, tx: true} }
func (r txRepos) Combos() combo.Repository { return &comboRepo{s: r.s, tx: true} }
func (r txRepos) Vouchers() voucher.Repository { return &voucherRepo{s: r.s, tx: true} }
func (r txRepos) Addresses() address.Repository { return &addressRepo{s: r.s, tx: true} }
func (r txRepos) Orders() order.Repository { return &orderRepo{s: r.s, tx: true} }

// 非事务仓储
func (s *Store) Users() user.Repository { return &userRepo{s: s} }
func (s *Store) Books() book.Repository { return &bookRepo{s: s} }
func (s *Store) Genres() genre.Repository { return &genreRepo{s: s} }
func (s *Store) Combos() combo.Repository { return &comboRepo{s: s} }
func (s *Store) Vouchers() voucher.Repository { return &voucherRepo{s: s} }
func (s *Store) Addresses() address.Repository { return &addressRepo{s: s} }
func (s *Store) Orders() order.Repository { return &orderRepo{s: s} }
func (s *Store) Reviews() review.Repository { return &reviewRepo{s: s} }
func (s *Store) Favorites() favorite.Repository { return &favoriteRepo{s: s} }
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

func copyBook(b *book.Book) *book.Book {
	c := *b
	return &c
}

func copyCombo(cb *combo.Combo) *combo.Combo {
	c := *cb
	c.BookIDs = append([]uint(nil), cb.BookIDs...)
	return &c
}

func copyVoucher(v *voucher.Voucher) *voucher.Voucher {
	c := *v
	return &c
}

func copyOrder(o *order.Order) *order.Order {
	c := *o
	c.Lines = append([]order.Line(nil), o.Lines...)
	if o.VoucherID != nil {
		id := *o.VoucherID
		c.VoucherID = &id
	}
	return &c
}
