package book

import (
	"context"
	"strings"

	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// Service 图书领域服务接口
// 封装图书的业务规则校验,不依赖具体的Repository实现
type Service interface {
	// CreateBook 创建图书
	// 业务规则:书名/作者非空,价格与库存非负,分类(如指定)必须存在
	CreateBook(ctx context.Context, b *Book) error

	// UpdateBook 更新图书,返回更新后的实体
	UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error)

	// SetCover 替换封面引用,返回旧引用供调用方清理
	SetCover(ctx context.Context, id uint, cover string) (old string, err error)

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id uint) error

	// GetBook 获取图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 全部图书
	ListBooks(ctx context.Context) ([]*Book, error)

	// SearchBooks 条件搜索
	SearchBooks(ctx context.Context, params SearchParams) ([]*Book, error)
}

type service struct {
	repo   Repository
	genres genre.Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository, genres genre.Repository) Service {
	return &service{repo: repo, genres: genres}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.checkGenre(ctx, b.GenreID); err != nil {
		return err
	}
	return s.repo.Create(ctx, b)
}

// UpdateBook 更新图书
func (s *service) UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Apply(params); err != nil {
		return nil, err
	}
	if params.GenreID != nil {
		if err := s.checkGenre(ctx, b.GenreID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	if params.Stock != nil {
		if err := s.repo.SetStock(ctx, id, *params.Stock); err != nil {
			return nil, err
		}
	}
	// 库存可能已被并发订单修改,以库中为准
	return s.repo.FindByID(ctx, id)
}

// SetCover 替换封面
func (s *service) SetCover(ctx context.Context, id uint, cover string) (string, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	old := b.CoverImage
	b.CoverImage = cover
	if err := s.repo.Update(ctx, b); err != nil {
		return "", err
	}
	return old, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetBook 获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 全部图书
func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.List(ctx)
}

// SearchBooks 条件搜索
func (s *service) SearchBooks(ctx context.Context, params SearchParams) ([]*Book, error) {
	params.Keyword = strings.TrimSpace(params.Keyword)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, params)
}

// checkGenre 分类ID为0表示未分类,不做校验
func (s *service) checkGenre(ctx context.Context, genreID uint) error {
	if genreID == 0 {
		return nil
	}
	_, err := s.genres.FindByID(ctx, genreID)
	return err
}
