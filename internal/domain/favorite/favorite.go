// Package favorite 收藏夹
package favorite

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Favorite 用户收藏的图书,(UserID, BookID)唯一
type Favorite struct {
	ID        uint
	UserID    uint
	BookID    uint
	CreatedAt time.Time
}

var (
	// ErrFavoriteNotFound 收藏不存在
	ErrFavoriteNotFound = apperrors.New(apperrors.ErrCodeFavoriteNotFound, "收藏不存在")

	// ErrFavoriteDuplicate 已收藏
	ErrFavoriteDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "已收藏该图书")
)

// Repository 收藏仓储接口
type Repository interface {
	// Create 重复收藏返回ErrFavoriteDuplicate
	Create(ctx context.Context, f *Favorite) error
	FindByID(ctx context.Context, id uint) (*Favorite, error)
	ListByUser(ctx context.Context, userID uint) ([]*Favorite, error)
	Delete(ctx context.Context, id uint) error
	// DeleteByUserAndBook 不存在返回ErrFavoriteNotFound
	DeleteByUserAndBook(ctx context.Context, userID, bookID uint) error
}

// Service 收藏领域服务
type Service interface {
	Add(ctx context.Context, userID, bookID uint) (*Favorite, error)
	ListByUser(ctx context.Context, userID uint) ([]*Favorite, error)
	// Remove 只能删除自己的收藏
	Remove(ctx context.Context, id, userID uint) error
	RemoveByBook(ctx context.Context, userID, bookID uint) error
}

type service struct {
	repo  Repository
	books book.Repository
}

// NewService 创建收藏服务
func NewService(repo Repository, books book.Repository) Service {
	return &service{repo: repo, books: books}
}

func (s *service) Add(ctx context.Context, userID, bookID uint) (*Favorite, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	f := &Favorite{UserID: userID, BookID: bookID, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]*Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Remove(ctx context.Context, id, userID uint) error {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if f.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) RemoveByBook(ctx context.Context, userID, bookID uint) error {
	return s.repo.DeleteByUserAndBook(ctx, userID, bookID)
}
