package review

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Service 评论领域服务
type Service interface {
	// CreateReview 图书必须存在
	CreateReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error)
	GetReview(ctx context.Context, id uint) (*Review, error)
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
	// UpdateReview 只有作者本人可以修改
	UpdateReview(ctx context.Context, id, userID uint, rating int, comment string) (*Review, error)
	// DeleteReview 作者本人或管理员可以删除
	DeleteReview(ctx context.Context, id, userID uint, isAdmin bool) error
	// AverageRating 单本图书的评分汇总
	AverageRating(ctx context.Context, bookID uint) (Rating, error)
}

type service struct {
	repo  Repository
	books book.Repository
}

// NewService 创建评论服务
func NewService(repo Repository, books book.Repository) Service {
	return &service{repo: repo, books: books}
}

func (s *service) CreateReview(ctx context.Context, bookID, userID uint, rating int, comment string) (*Review, error) {
	r, err := New(bookID, userID, rating, comment)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetReview(ctx context.Context, id uint) (*Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

func (s *service) UpdateReview(ctx context.Context, id, userID uint, rating int, comment string) (*Review, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}
	if err := r.Edit(rating, comment); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) DeleteReview(ctx context.Context, id, userID uint, isAdmin bool) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && !r.IsOwnedBy(userID) {
		return apperrors.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) AverageRating(ctx context.Context, bookID uint) (Rating, error) {
	ratings, err := s.repo.Ratings(ctx, []uint{bookID})
	if err != nil {
		return Rating{}, err
	}
	return ratings[bookID], nil
}
