package genre

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/genre"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// GenreUseCase 图书分类
type GenreUseCase struct {
	genres genre.Repository
	logger *zap.Logger
}

// NewGenreUseCase 创建分类用例
func NewGenreUseCase(genres genre.Repository, logger *zap.Logger) *GenreUseCase {
	return &GenreUseCase{genres: genres, logger: logger}
}

// GenreView 分类
type GenreView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// List 分类列表,keyword非空时按名称模糊匹配
func (uc *GenreUseCase) List(ctx context.Context, keyword string) ([]GenreView, error) {
	genres, err := uc.genres.Search(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, err
	}
	views := make([]GenreView, len(genres))
	for i, g := range genres {
		views[i] = GenreView{ID: g.ID, Name: g.Name}
	}
	return views, nil
}

// Get 分类详情
func (uc *GenreUseCase) Get(ctx context.Context, id uint) (*GenreView, error) {
	g, err := uc.genres.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &GenreView{ID: g.ID, Name: g.Name}, nil
}

// Search 按名称模糊搜索,关键词必填
func (uc *GenreUseCase) Search(ctx context.Context, keyword string) ([]GenreView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.ErrInvalidParams.Withf("搜索关键词不能为空")
	}
	return uc.List(ctx, keyword)
}

// Create 创建分类,名称不区分大小写唯一
func (uc *GenreUseCase) Create(ctx context.Context, name string) (*GenreView, error) {
	g, err := genre.New(name)
	if err != nil {
		return nil, err
	}
	if err := uc.genres.Create(ctx, g); err != nil {
		return nil, err
	}
	return &GenreView{ID: g.ID, Name: g.Name}, nil
}

// Rename 修改分类名称
func (uc *GenreUseCase) Rename(ctx context.Context, id uint, name string) (*GenreView, error) {
	g, err := uc.genres.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Rename(name); err != nil {
		return nil, err
	}
	if err := uc.genres.Update(ctx, g); err != nil {
		return nil, err
	}
	return &GenreView{ID: g.ID, Name: g.Name}, nil
}

// Delete 删除分类,所属图书变为未分类
func (uc *GenreUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.genres.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("分类已删除", zap.Uint("genre_id", id))
	return nil
}
