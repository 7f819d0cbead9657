package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/domain/review"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ---------- 评论 ----------

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := toReviewModel(rv)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评论失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询评论失败")
	}
	return toReviewEntity(&model), nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var models []ReviewModel
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询评论失败")
	}
	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = toReviewEntity(&models[i])
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("id = ?", rv.ID).Updates(map[string]interface{}{
		"rating":     rv.Rating,
		"comment":    rv.Comment,
		"updated_at": rv.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// Ratings SELECT book_id, AVG(rating), COUNT(*) FROM reviews WHERE book_id IN (?) GROUP BY book_id
func (r *reviewRepository) Ratings(ctx context.Context, bookIDs []uint) (map[uint]review.Rating, error) {
	out := make(map[uint]review.Rating, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		BookID  uint
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("book_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计评分失败")
	}

	for _, row := range rows {
		out[row.BookID] = review.Rating{Average: row.Average, Count: row.Count}
	}
	return out, nil
}

func toReviewModel(rv *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:        rv.ID,
		BookID:    rv.BookID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

func toReviewEntity(m *ReviewModel) *review.Review {
	return &review.Review{
		ID:        m.ID,
		BookID:    m.BookID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ---------- 收藏 ----------

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓储
func NewFavoriteRepository(db *gorm.DB) favorite.Repository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, f *favorite.Favorite) error {
	model := &FavoriteModel{UserID: f.UserID, BookID: f.BookID, CreatedAt: f.CreatedAt}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return favorite.ErrFavoriteDuplicate
		}
		return apperrors.Wrap(err, "添加收藏失败")
	}
	f.ID = model.ID
	return nil
}

func (r *favoriteRepository) FindByID(ctx context.Context, id uint) (*favorite.Favorite, error) {
	var model FavoriteModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, favorite.ErrFavoriteNotFound
		}
		return nil, apperrors.Wrap(err, "查询收藏失败")
	}
	return toFavoriteEntity(&model), nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]*favorite.Favorite, error) {
	var models []FavoriteModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询收藏失败")
	}
	out := make([]*favorite.Favorite, len(models))
	for i := range models {
		out[i] = toFavoriteEntity(&models[i])
	}
	return out, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *favoriteRepository) DeleteByUserAndBook(ctx context.Context, userID, bookID uint) error {
	return r.delete(r.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID))
}

func (r *favoriteRepository) delete(query *gorm.DB) error {
	result := query.Delete(&FavoriteModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除收藏失败")
	}
	if result.RowsAffected == 0 {
		return favorite.ErrFavoriteNotFound
	}
	return nil
}

func toFavoriteEntity(m *FavoriteModel) *favorite.Favorite {
	return &favorite.Favorite{ID: m.ID, UserID: m.UserID, BookID: m.BookID, CreatedAt: m.CreatedAt}
}
