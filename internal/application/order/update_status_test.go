package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// interleavedUoW 不串行化事务的工作单元
// 每次仓储调用单独加锁,两个事务在读到订单后互相等待,模拟并发事务交错执行
type interleavedUoW struct {
	store   *memory.Store
	arrived *sync.WaitGroup
}

func (u interleavedUoW) Do(ctx context.Context, fn func(ctx context.Context, repos order.Repositories) error) error {
	return fn(ctx, interleavedRepos(u))
}

type interleavedRepos interleavedUoW

func (r interleavedRepos) Users() user.Repository { return r.store.Users() }
func (r interleavedRepos) Books() book.Repository { return r.store.Books() }
func (r interleavedRepos) Combos() combo.Repository { return r.store.Combos() }
func (r interleavedRepos) Vouchers() voucher.Repository { return r.store.Vouchers() }
func (r interleavedRepos) Addresses() address.Repository { return r.store.Addresses() }
func (r interleavedRepos) Orders() order.Repository {
	return &rendezvousOrders{Repository: r.store.Orders(), arrived: r.arrived}
}

// rendezvousOrders 所有事务都读到订单后才继续
type rendezvousOrders struct {
	order.Repository
	arrived *sync.WaitGroup
}

func (o *rendezvousOrders) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	got, err := o.Repository.LockByID(ctx, id)
	o.arrived.Done()
	o.arrived.Wait()
	return got, err
}

// TestCancelOrderRestocks 取消订单回补库存(含套装成分)并释放优惠券
func TestCancelOrderRestocks(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "图书A", "10.00", 5)
	x := f.addBook(t, "图书X", "20.00", 2)
	y := f.addBook(t, "图书Y", "30.00", 1)
	v := f.addVoucher(t, "SAVE10", 100)
	c, err := combo.New("套装C", "", []uint{x.ID, y.ID}, dec("50.00"), dec("45.00"))
	require.NoError(t, err)
	require.NoError(t, f.store.Combos().Create(context.Background(), c))

	placed, err := f.place.Execute(context.Background(), f.request([]PlaceOrderItem{
		bookItem(a, 3),
		{ComboID: c.ID, Quantity: 1, UnitPrice: c.DiscountPrice},
	}, "SAVE10"))
	require.NoError(t, err)
	require.Equal(t, 1, f.usedCount(t, v.ID))

	uc := NewUpdateStatusUseCase(f.store, zap.NewNop())
	resp, err := uc.Execute(context.Background(), placed.OrderID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 2, f.stock(t, x.ID))
	assert.Equal(t, 1, f.stock(t, y.ID))
	assert.Equal(t, 0, f.usedCount(t, v.ID))

	// 已取消是终态
	_, err = uc.Execute(context.Background(), placed.OrderID, "confirmed")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 5, f.stock(t, a.ID), "重复取消不应再次回补")
}

// TestConcurrentCancelRestocksOnce 两个取消请求都读到待确认状态,只有一个生效
func TestConcurrentCancelRestocksOnce(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "图书A", "10.00", 5)
	v := f.addVoucher(t, "SAVE10", 100)
	placed, err := f.place.Execute(context.Background(), f.request([]PlaceOrderItem{bookItem(a, 3)}, "SAVE10"))
	require.NoError(t, err)
	require.Equal(t, 2, f.stock(t, a.ID))
	require.Equal(t, 1, f.usedCount(t, v.ID))

	var arrived sync.WaitGroup
	arrived.Add(2)
	uc := NewUpdateStatusUseCase(interleavedUoW{store: f.store, arrived: &arrived}, zap.NewNop())

	errs := make([]error, 2)
	var done sync.WaitGroup
	for i := range errs {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			_, errs[i] = uc.Execute(context.Background(), placed.OrderID, "cancelled")
		}(i)
	}
	done.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 5, f.stock(t, a.ID), "库存只回补一次")
	assert.Equal(t, 0, f.usedCount(t, v.ID), "优惠券只释放一次")

	o, err := f.store.Orders().FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
}

// TestUpdateStatusTransitions 状态流转表
func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "图书A", "10.00", 50)
	uc := NewUpdateStatusUseCase(f.store, zap.NewNop())

	place := func() uint {
		resp, err := f.place.Execute(context.Background(), f.request([]PlaceOrderItem{bookItem(a, 1)}, ""))
		require.NoError(t, err)
		return resp.OrderID
	}

	t.Run("完整流转到已送达", func(t *testing.T) {
		id := place()
		for _, s := range []string{"confirmed", "shipping", "delivered"} {
			resp, err := uc.Execute(context.Background(), id, s)
			require.NoError(t, err)
			assert.Equal(t, s, resp.Status)
		}
		o, err := f.store.Orders().FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, o.Status)
	})

	t.Run("待确认不能直接送达", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), place(), "delivered")
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("配送中不能取消", func(t *testing.T) {
		id := place()
		_, err := uc.Execute(context.Background(), id, "confirmed")
		require.NoError(t, err)
		_, err = uc.Execute(context.Background(), id, "shipping")
		require.NoError(t, err)
		_, err = uc.Execute(context.Background(), id, "cancelled")
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("未知状态", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), place(), "lost")
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), 999, "confirmed")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

// TestDeleteOrderKeepsStock 删除订单不回补库存
func TestDeleteOrderKeepsStock(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "图书A", "10.00", 5)
	v := f.addVoucher(t, "SAVE10", 100)
	placed, err := f.place.Execute(context.Background(), f.request([]PlaceOrderItem{bookItem(a, 3)}, "SAVE10"))
	require.NoError(t, err)

	uc := NewDeleteOrderUseCase(f.store.Orders(), zap.NewNop())
	require.NoError(t, uc.Execute(context.Background(), placed.OrderID))

	assert.Equal(t, 2, f.stock(t, a.ID))
	assert.Equal(t, 1, f.usedCount(t, v.ID))
	assert.ErrorIs(t, uc.Execute(context.Background(), placed.OrderID), order.ErrOrderNotFound)
}

// TestQueryOrders 订单投影
func TestQueryOrders(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "图书A", "10.00", 5)
	placed, err := f.place.Execute(context.Background(), f.request([]PlaceOrderItem{bookItem(a, 2)}, ""))
	require.NoError(t, err)

	other := user.NewUser("other@example.com", "hash", "路人")
	require.NoError(t, f.store.Users().Create(context.Background(), other))

	q := NewQueryOrdersUseCase(f.store.Orders(), f.store.Users(), f.store.Addresses(), f.store.Books(), f.store.Combos())

	view, err := q.Get(context.Background(), placed.OrderID, f.customer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNo, view.OrderNo)
	assert.Equal(t, "读者", view.Customer.Name)
	require.NotNil(t, view.Address)
	assert.Equal(t, "张三", view.Address.RecipientName)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "图书A", view.Lines[0].BookTitle)
	assert.True(t, view.Lines[0].Amount.Equal(dec("20.00")))

	// 两次读取结果一致
	again, err := q.Get(context.Background(), placed.OrderID, f.customer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, view, again)

	_, err = q.Get(context.Background(), placed.OrderID, other.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = q.Get(context.Background(), placed.OrderID, other.ID, true)
	assert.NoError(t, err)

	mine, err := q.ListByCustomer(context.Background(), f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := q.ListByCustomer(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := q.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
