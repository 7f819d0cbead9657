package favorite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := favorite.NewService(store.Favorites(), store.Books())

	b := book.NewBook("收藏的书", "作者", 0, decimal.NewFromInt(20), 1, time.Now(), "")
	require.NoError(t, store.Books().Create(ctx, b))

	f, err := svc.Add(ctx, 1, b.ID)
	require.NoError(t, err)

	t.Run("重复收藏", func(t *testing.T) {
		_, err := svc.Add(ctx, 1, b.ID)
		assert.ErrorIs(t, err, favorite.ErrFavoriteDuplicate)
	})

	t.Run("收藏不存在的图书", func(t *testing.T) {
		_, err := svc.Add(ctx, 1, 999)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("只能删除自己的收藏", func(t *testing.T) {
		assert.ErrorIs(t, svc.Remove(ctx, f.ID, 2), apperrors.ErrForbidden)
	})

	t.Run("按图书取消收藏", func(t *testing.T) {
		require.NoError(t, svc.RemoveByBook(ctx, 1, b.ID))
		list, err := svc.ListByUser(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.ErrorIs(t, svc.RemoveByBook(ctx, 1, b.ID), favorite.ErrFavoriteNotFound)
	})
}
