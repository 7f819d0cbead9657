package combo_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
)

func seedBooks(t *testing.T, store *memory.Store, n int) []uint {
	t.Helper()
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		b := book.NewBook("套装成分", "作者", 0, decimal.NewFromInt(30), 10, time.Now(), "")
		require.NoError(t, store.Books().Create(context.Background(), b))
		ids = append(ids, b.ID)
	}
	return ids
}

func TestCreateCombo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := combo.NewService(store.Combos(), store.Books())
	ids := seedBooks(t, store, 3)

	t.Run("正常创建", func(t *testing.T) {
		c, err := combo.New("入门套装", "", []uint{ids[0], ids[1], ids[0]}, decimal.NewFromInt(60), decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NoError(t, svc.CreateCombo(ctx, c))

		got, err := svc.GetCombo(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{ids[0], ids[1]}, got.BookIDs, "重复的图书应被去重")
	})

	t.Run("少于两本", func(t *testing.T) {
		_, err := combo.New("单本", "", []uint{ids[0], ids[0]}, decimal.NewFromInt(30), decimal.NewFromInt(25))
		assert.ErrorIs(t, err, combo.ErrTooFewBooks)
	})

	t.Run("包含不存在的图书", func(t *testing.T) {
		c, err := combo.New("坏套装", "", []uint{ids[0], 999}, decimal.NewFromInt(60), decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.ErrorIs(t, svc.CreateCombo(ctx, c), combo.ErrInvalidCombo)
	})
}

func TestUpdateCombo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := combo.NewService(store.Combos(), store.Books())
	ids := seedBooks(t, store, 3)

	c, err := combo.New("套装", "", ids[:2], decimal.NewFromInt(60), decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, svc.CreateCombo(ctx, c))

	updated, err := svc.UpdateCombo(ctx, c.ID, "扩充套装", "三本", ids, decimal.NewFromInt(90), decimal.NewFromInt(70))
	require.NoError(t, err)
	assert.Len(t, updated.BookIDs, 3)
	assert.True(t, updated.Contains(ids[2]))

	_, err = svc.UpdateCombo(ctx, 999, "x", "", ids, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, combo.ErrComboNotFound)
}

func TestDeleteBookRemovesComboConstituent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := combo.NewService(store.Combos(), store.Books())
	ids := seedBooks(t, store, 2)

	c, err := combo.New("套装", "", ids, decimal.NewFromInt(60), decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, svc.CreateCombo(ctx, c))

	require.NoError(t, store.Books().Delete(ctx, ids[0]))

	got, err := svc.GetCombo(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[1]}, got.BookIDs)
}
