package genre

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestGenreUseCase(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewGenreUseCase(s.Genres(), zap.NewNop())

	scifi, err := uc.Create(ctx, "科幻")
	require.NoError(t, err)
	_, err = uc.Create(ctx, "历史")
	require.NoError(t, err)

	_, err = uc.Create(ctx, "科幻")
	assert.True(t, errors.Is(err, genre.ErrGenreDuplicate))
	_, err = uc.Create(ctx, "  ")
	assert.True(t, errors.Is(err, genre.ErrInvalidName))

	all, err := uc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := uc.List(ctx, "科")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, scifi.ID, found[0].ID)

	renamed, err := uc.Rename(ctx, scifi.ID, "科学幻想")
	require.NoError(t, err)
	assert.Equal(t, "科学幻想", renamed.Name)

	b := book.NewBook("三体", "刘慈欣", scifi.ID, decimal.NewFromInt(20), 1, time.Now(), "")
	require.NoError(t, s.Books().Create(ctx, b))

	require.NoError(t, uc.Delete(ctx, scifi.ID))
	got, err := s.Books().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, got.GenreID, "删除分类后图书变为未分类")

	err = uc.Delete(ctx, scifi.ID)
	assert.True(t, errors.Is(err, genre.ErrGenreNotFound))
}

func TestGenreGetAndSearch(t *testing.T) {
	ctx := context.Background()
	uc := NewGenreUseCase(memory.NewStore().Genres(), zap.NewNop())

	fiction, err := uc.Create(ctx, "Fiction")
	require.NoError(t, err)
	_, err = uc.Create(ctx, "Science Fiction")
	require.NoError(t, err)
	_, err = uc.Create(ctx, "History")
	require.NoError(t, err)

	got, err := uc.Get(ctx, fiction.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fiction", got.Name)

	_, err = uc.Get(ctx, 999)
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)

	found, err := uc.Search(ctx, " fiction ")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = uc.Search(ctx, "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}
