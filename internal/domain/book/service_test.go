package book_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (book.Service, *memory.Store, *genre.Genre) {
	t.Helper()
	store := memory.NewStore()
	g, err := genre.New("编程")
	require.NoError(t, err)
	require.NoError(t, store.Genres().Create(context.Background(), g))
	return book.NewService(store.Books(), store.Genres()), store, g
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	svc, _, g := setup(t)

	t.Run("正常创建", func(t *testing.T) {
		b := book.NewBook("Go程序设计语言", "Donovan", g.ID, decimal.NewFromFloat(79.9), 10, date(2016, 1, 1), "")
		require.NoError(t, svc.CreateBook(ctx, b))
		assert.NotZero(t, b.ID)
	})

	t.Run("分类不存在", func(t *testing.T) {
		b := book.NewBook("无分类", "作者", 999, decimal.NewFromInt(10), 1, date(2020, 1, 1), "")
		assert.ErrorIs(t, svc.CreateBook(ctx, b), genre.ErrGenreNotFound)
	})

	t.Run("价格为负", func(t *testing.T) {
		b := book.NewBook("负价格", "作者", 0, decimal.NewFromInt(-1), 1, date(2020, 1, 1), "")
		assert.ErrorIs(t, svc.CreateBook(ctx, b), book.ErrInvalidPrice)
	})
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)
	b := book.NewBook("旧书名", "作者", 0, decimal.NewFromInt(10), 1, date(2020, 1, 1), "")
	require.NoError(t, svc.CreateBook(ctx, b))

	title := "新书名"
	stock := 20
	updated, err := svc.UpdateBook(ctx, b.ID, book.UpdateParams{Title: &title, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "新书名", updated.Title)
	assert.Equal(t, 20, updated.Stock)
	assert.Equal(t, "作者", updated.Author, "未指定的字段保持不变")

	negative := -5
	_, err = svc.UpdateBook(ctx, b.ID, book.UpdateParams{Stock: &negative})
	assert.ErrorIs(t, err, book.ErrInvalidStock)

	_, err = svc.UpdateBook(ctx, 999, book.UpdateParams{Title: &title})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestSetCover(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)
	b := book.NewBook("有封面", "作者", 0, decimal.NewFromInt(10), 1, date(2020, 1, 1), "")
	require.NoError(t, svc.CreateBook(ctx, b))

	old, err := svc.SetCover(ctx, b.ID, "books/a.jpg")
	require.NoError(t, err)
	assert.Empty(t, old)

	old, err = svc.SetCover(ctx, b.ID, "books/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "books/a.jpg", old, "应返回旧封面供清理")
}

// sellingBooks 第一次读取图书后插入一笔并发订单的扣减
type sellingBooks struct {
	book.Repository
	quantity int
	once     sync.Once
}

func (r *sellingBooks) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, err := r.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.once.Do(func() { err = r.Repository.UpdateStock(ctx, id, -r.quantity) })
	return b, err
}

func TestInfoUpdateKeepsConcurrentStockChanges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	newBook := func(t *testing.T) *book.Book {
		t.Helper()
		b := book.NewBook("热销书", "作者", 0, decimal.NewFromInt(10), 5, date(2020, 1, 1), "")
		require.NoError(t, store.Books().Create(ctx, b))
		return b
	}
	stockOf := func(t *testing.T, id uint) int {
		t.Helper()
		b, err := store.Books().FindByID(ctx, id)
		require.NoError(t, err)
		return b.Stock
	}

	t.Run("替换封面", func(t *testing.T) {
		b := newBook(t)
		svc := book.NewService(&sellingBooks{Repository: store.Books(), quantity: 3}, store.Genres())
		_, err := svc.SetCover(ctx, b.ID, "books/hot.jpg")
		require.NoError(t, err)
		assert.Equal(t, 2, stockOf(t, b.ID))
	})

	t.Run("修改书名", func(t *testing.T) {
		b := newBook(t)
		svc := book.NewService(&sellingBooks{Repository: store.Books(), quantity: 3}, store.Genres())
		title := "热销书(第二版)"
		updated, err := svc.UpdateBook(ctx, b.ID, book.UpdateParams{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, 2, updated.Stock)
		assert.Equal(t, 2, stockOf(t, b.ID))
	})

	t.Run("显式设置库存", func(t *testing.T) {
		b := newBook(t)
		svc := book.NewService(&sellingBooks{Repository: store.Books(), quantity: 3}, store.Genres())
		stock := 40
		updated, err := svc.UpdateBook(ctx, b.ID, book.UpdateParams{Stock: &stock})
		require.NoError(t, err)
		assert.Equal(t, 40, updated.Stock)
		assert.Equal(t, 40, stockOf(t, b.ID))
	})
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	svc, _, g := setup(t)

	seed := []*book.Book{
		book.NewBook("Go语言实战", "Kennedy", g.ID, decimal.NewFromInt(59), 5, date(2017, 6, 1), ""),
		book.NewBook("Go并发编程", "Cox", g.ID, decimal.NewFromInt(89), 5, date(2021, 3, 1), ""),
		book.NewBook("红楼梦", "曹雪芹", 0, decimal.NewFromInt(35), 5, date(1791, 1, 1), ""),
	}
	for _, b := range seed {
		require.NoError(t, svc.CreateBook(ctx, b))
	}

	t.Run("关键词匹配书名", func(t *testing.T) {
		got, err := svc.SearchBooks(ctx, book.SearchParams{Keyword: "go"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("关键词匹配作者", func(t *testing.T) {
		got, err := svc.SearchBooks(ctx, book.SearchParams{Keyword: "曹雪芹"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "红楼梦", got[0].Title)
	})

	t.Run("价格区间并按价格升序", func(t *testing.T) {
		lo := decimal.NewFromInt(40)
		got, err := svc.SearchBooks(ctx, book.SearchParams{MinPrice: &lo, SortBy: book.SortByPrice, Ascending: true})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Go语言实战", got[0].Title)
	})

	t.Run("出版日期之后", func(t *testing.T) {
		after := date(2020, 1, 1)
		got, err := svc.SearchBooks(ctx, book.SearchParams{PublishedAfter: &after})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Go并发编程", got[0].Title)
	})

	t.Run("价格区间颠倒", func(t *testing.T) {
		lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)
		_, err := svc.SearchBooks(ctx, book.SearchParams{MinPrice: &lo, MaxPrice: &hi})
		assert.ErrorIs(t, err, book.ErrInvalidSearch)
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)
	b := book.NewBook("待删除", "作者", 0, decimal.NewFromInt(10), 1, date(2020, 1, 1), "")
	require.NoError(t, svc.CreateBook(ctx, b))

	require.NoError(t, svc.DeleteBook(ctx, b.ID))
	_, err := svc.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, svc.DeleteBook(ctx, b.ID), book.ErrBookNotFound)
}
