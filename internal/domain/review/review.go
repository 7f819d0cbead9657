// Package review 图书评论与评分
package review

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Review 评论实体
type Review struct {
	ID        uint
	BookID    uint
	UserID    uint
	Rating    int // 1-5
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	// ErrReviewNotFound 评论不存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "评论不存在")

	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在1-5之间")

	// ErrCommentTooLong 评论过长
	ErrCommentTooLong = apperrors.New(apperrors.ErrCodeInvalidParams, "评论不能超过1000个字符")

	// ErrNotOwner 只能修改自己的评论
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "只能修改自己的评论")
)

// New 创建评论
func New(bookID, userID uint, rating int, comment string) (*Review, error) {
	now := time.Now()
	r := &Review{
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.set(rating, comment); err != nil {
		return nil, err
	}
	return r, nil
}

// Edit 修改评分与内容
func (r *Review) Edit(rating int, comment string) error {
	if err := r.set(rating, comment); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (r *Review) set(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > 1000 {
		return ErrCommentTooLong
	}
	r.Rating = rating
	r.Comment = comment
	return nil
}

// IsOwnedBy 是否为评论作者
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Rating 单本图书的评分汇总
type Rating struct {
	Average float64
	Count   int64
}

// Repository 评论仓储接口
type Repository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uint) error
	// Ratings 按图书汇总评分,读取时实时计算,没有评论的图书不在结果中
	Ratings(ctx context.Context, bookIDs []uint) (map[uint]Rating, error)
}
