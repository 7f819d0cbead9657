package mysql

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

// 仓储集成测试需要真实MySQL:
//
//	BOOKSHOP_TEST_MYSQL_DSN="root:root@tcp(localhost:3306)/bookshop_test?parseTime=true&loc=Local" go test ./internal/infrastructure/persistence/mysql/...
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("BOOKSHOP_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("未设置BOOKSHOP_TEST_MYSQL_DSN,跳过MySQL集成测试")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	// 按依赖逆序清空
	for _, table := range []string{
		"favorites", "reviews", "order_lines", "orders", "shipping_addresses",
		"vouchers", "combo_items", "combos", "books", "genres", "users",
	} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func createBook(t *testing.T, db *gorm.DB, title string, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(title, "作者", 0, decimal.RequireFromString("10.00"), stock, time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local), "")
	require.NoError(t, NewBookRepository(db).Create(context.Background(), b))
	return b
}

func TestTxManagerRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := createBook(t, db, "回滚测试", 5)

	errAbort := errors.New("abort")
	err := NewTxManager(db).Do(ctx, func(ctx context.Context, repos order.Repositories) error {
		if _, err := repos.Books().LockByID(ctx, b.ID); err != nil {
			return err
		}
		if err := repos.Books().UpdateStock(ctx, b.ID, -3); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := NewBookRepository(db).FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestUpdateStockNeverNegative(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)
	b := createBook(t, db, "库存测试", 2)

	assert.ErrorIs(t, repo.UpdateStock(ctx, b.ID, -3), book.ErrInsufficientStock)
	assert.ErrorIs(t, repo.UpdateStock(ctx, 999999, -1), book.ErrBookNotFound)
	require.NoError(t, repo.UpdateStock(ctx, b.ID, -2))
}

func TestVoucherIncrementGuard(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewVoucherRepository(db)

	v, err := voucher.New("ONCE", decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.Zero, time.Now().AddDate(0, 1, 0), 1)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, v))
	assert.ErrorIs(t, repo.Create(ctx, v), voucher.ErrVoucherDuplicate)

	require.NoError(t, repo.IncrementUsage(ctx, v.ID))
	assert.ErrorIs(t, repo.IncrementUsage(ctx, v.ID), voucher.ErrVoucherInvalid)
}

func TestReportQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u := user.NewUser("report@example.com", "hash", "报表")
	require.NoError(t, NewUserRepository(db).Create(ctx, u))
	a := createBook(t, db, "A", 10)
	b := createBook(t, db, "B", 10)

	orders := NewOrderRepository(db)
	for i, tc := range []struct {
		bookID uint
		qty    int
		status order.Status
	}{
		{a.ID, 1, order.StatusDelivered},
		{b.ID, 3, order.StatusDelivered},
		{a.ID, 1, order.StatusPending},
	} {
		amount := decimal.NewFromInt(int64(10 * tc.qty))
		o := &order.Order{
			OrderNo:       "ORDTEST" + string(rune('0'+i)),
			UserID:        u.ID,
			OrderDate:     time.Now(),
			Subtotal:      amount,
			Discount:      decimal.Zero,
			Total:         amount,
			Status:        tc.status,
			PaymentMethod: "COD",
			Lines:         []order.Line{order.NewBookLine(tc.bookID, tc.qty, decimal.NewFromInt(10))},
		}
		require.NoError(t, orders.Create(ctx, o))
	}

	reports := NewReportRepository(db)
	best, err := reports.BestSellers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, best, 2)
	assert.Equal(t, b.ID, best[0].BookID)
	assert.Equal(t, int64(3), best[0].TotalSold)

	total, err := reports.DeliveredTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(40)), "实际%s", total)

	rv, err := review.New(a.ID, u.ID, 4, "")
	require.NoError(t, err)
	require.NoError(t, NewReviewRepository(db).Create(ctx, rv))
	top, err := reports.TopRated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.InDelta(t, 4.0, top[0].AverageRating, 1e-9)
}

func TestOrderStatusUpdateRequiresPreviousStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u := user.NewUser("status@example.com", "hash", "状态")
	require.NoError(t, NewUserRepository(db).Create(ctx, u))
	b := createBook(t, db, "状态测试", 10)

	repo := NewOrderRepository(db)
	o := &order.Order{
		OrderNo:       "ORDSTATUS1",
		UserID:        u.ID,
		OrderDate:     time.Now(),
		Subtotal:      decimal.NewFromInt(10),
		Discount:      decimal.Zero,
		Total:         decimal.NewFromInt(10),
		Status:        order.StatusPending,
		PaymentMethod: "COD",
		Lines:         []order.Line{order.NewBookLine(b.ID, 1, decimal.NewFromInt(10))},
	}
	require.NoError(t, repo.Create(ctx, o))

	// 两个请求都基于待确认状态取消,第二个落空
	first, err := repo.LockByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.LockByID(ctx, o.ID)
	require.NoError(t, err)
	require.NoError(t, first.TransitionTo(order.StatusCancelled))
	require.NoError(t, second.TransitionTo(order.StatusCancelled))

	require.NoError(t, repo.UpdateStatus(ctx, first, order.StatusPending))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, second, order.StatusPending), order.ErrInvalidStatusTransition)

	second.ID = 999999
	assert.ErrorIs(t, repo.UpdateStatus(ctx, second, order.StatusPending), order.ErrOrderNotFound)
}

func TestBookUpdateLeavesStock(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)
	b := createBook(t, db, "封面测试", 5)

	// b为扣减前读到的快照
	require.NoError(t, repo.UpdateStock(ctx, b.ID, -3))
	b.CoverImage = "books/cover.jpg"
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "books/cover.jpg", got.CoverImage)
	assert.Equal(t, 2, got.Stock)

	require.NoError(t, repo.SetStock(ctx, b.ID, 9))
	assert.ErrorIs(t, repo.SetStock(ctx, b.ID, -1), book.ErrInvalidStock)
	assert.ErrorIs(t, repo.SetStock(ctx, 999999, 1), book.ErrBookNotFound)
	got, err = repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
}
