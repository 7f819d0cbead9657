package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/genre"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository 创建分类仓储
func NewGenreRepository(db *gorm.DB) genre.Repository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, g *genre.Genre) error {
	model := &GenreModel{Name: g.Name, CreatedAt: g.CreatedAt}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return genre.ErrGenreDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	g.ID = model.ID
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*genre.Genre, error) {
	var model GenreModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, genre.ErrGenreNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	return toGenreEntity(&model), nil
}

func (r *genreRepository) Update(ctx context.Context, g *genre.Genre) error {
	result := r.db.WithContext(ctx).Model(&GenreModel{ID: g.ID}).Update("name", g.Name)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return genre.ErrGenreDuplicate
		}
		return apperrors.Wrap(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		_, err := r.FindByID(ctx, g.ID)
		return err
	}
	return nil
}

// Delete 删除分类,该分类下的图书变为未分类
func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BookModel{}).Where("genre_id = ?", id).Update("genre_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "解除图书分类失败")
		}
		result := tx.Delete(&GenreModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除分类失败")
		}
		if result.RowsAffected == 0 {
			return genre.ErrGenreNotFound
		}
		return nil
	})
}

func (r *genreRepository) List(ctx context.Context) ([]*genre.Genre, error) {
	return r.Search(ctx, "")
}

func (r *genreRepository) Search(ctx context.Context, keyword string) ([]*genre.Genre, error) {
	query := r.db.WithContext(ctx).Order("name")
	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	var models []GenreModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	genres := make([]*genre.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres, nil
}

func toGenreEntity(m *GenreModel) *genre.Genre {
	return &genre.Genre{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}
