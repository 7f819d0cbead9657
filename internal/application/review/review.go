package review

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/report"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

// ReviewUseCase 图书评论
type ReviewUseCase struct {
	service review.Service
	users   user.Repository
}

// NewReviewUseCase 创建评论用例
func NewReviewUseCase(service review.Service, users user.Repository) *ReviewUseCase {
	return &ReviewUseCase{service: service, users: users}
}

// ReviewView 评论
type ReviewView struct {
	ID        uint      `json:"id"`
	BookID    uint      `json:"book_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookReviews 图书的评论列表与评分汇总
type BookReviews struct {
	BookID        uint         `json:"book_id"`
	AverageRating float64      `json:"average_rating"`
	ReviewCount   int64        `json:"review_count"`
	Reviews       []ReviewView `json:"reviews"`
}

// Create 发表评论
func (uc *ReviewUseCase) Create(ctx context.Context, bookID, userID uint, rating int, comment string) (*ReviewView, error) {
	r, err := uc.service.CreateReview(ctx, bookID, userID, rating, comment)
	if err != nil {
		return nil, err
	}
	return uc.one(ctx, r)
}

// Get 评论详情
func (uc *ReviewUseCase) Get(ctx context.Context, id uint) (*ReviewView, error) {
	r, err := uc.service.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.one(ctx, r)
}

// ListByBook 图书的全部评论,附带平均评分
func (uc *ReviewUseCase) ListByBook(ctx context.Context, bookID uint) (*BookReviews, error) {
	reviews, err := uc.service.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	rating, err := uc.service.AverageRating(ctx, bookID)
	if err != nil {
		return nil, err
	}
	views, err := uc.project(ctx, reviews)
	if err != nil {
		return nil, err
	}
	return &BookReviews{
		BookID:        bookID,
		AverageRating: report.RoundRating(rating.Average),
		ReviewCount:   rating.Count,
		Reviews:       views,
	}, nil
}

// Update 修改评论,只能修改自己的评论
func (uc *ReviewUseCase) Update(ctx context.Context, id, userID uint, rating int, comment string) (*ReviewView, error) {
	r, err := uc.service.UpdateReview(ctx, id, userID, rating, comment)
	if err != nil {
		return nil, err
	}
	return uc.one(ctx, r)
}

// Delete 删除评论,作者本人或管理员
func (uc *ReviewUseCase) Delete(ctx context.Context, id, userID uint, isAdmin bool) error {
	return uc.service.DeleteReview(ctx, id, userID, isAdmin)
}

func (uc *ReviewUseCase) one(ctx context.Context, r *review.Review) (*ReviewView, error) {
	views, err := uc.project(ctx, []*review.Review{r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (uc *ReviewUseCase) project(ctx context.Context, reviews []*review.Review) ([]ReviewView, error) {
	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}
	users, err := uc.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	views := make([]ReviewView, len(reviews))
	for i, r := range reviews {
		views[i] = ReviewView{
			ID:        r.ID,
			BookID:    r.BookID,
			UserID:    r.UserID,
			UserName:  names[r.UserID],
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return views, nil
}
