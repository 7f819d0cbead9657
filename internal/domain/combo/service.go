package combo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// Service 套装领域服务
type Service interface {
	// CreateCombo 创建套装,成分图书必须全部存在
	CreateCombo(ctx context.Context, c *Combo) error
	UpdateCombo(ctx context.Context, id uint, name, description string, bookIDs []uint, totalPrice, discountPrice decimal.Decimal) (*Combo, error)
	// SetImage 替换图片引用,返回旧引用
	SetImage(ctx context.Context, id uint, image string) (string, error)
	DeleteCombo(ctx context.Context, id uint) error
	GetCombo(ctx context.Context, id uint) (*Combo, error)
	ListCombos(ctx context.Context) ([]*Combo, error)
}

type service struct {
	repo  Repository
	books book.Repository
}

// NewService 创建套装领域服务
func NewService(repo Repository, books book.Repository) Service {
	return &service{repo: repo, books: books}
}

func (s *service) CreateCombo(ctx context.Context, c *Combo) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.checkBooks(ctx, c.BookIDs); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *service) UpdateCombo(ctx context.Context, id uint, name, description string, bookIDs []uint, totalPrice, discountPrice decimal.Decimal) (*Combo, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(name, description, bookIDs, totalPrice, discountPrice); err != nil {
		return nil, err
	}
	if err := s.checkBooks(ctx, c.BookIDs); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) SetImage(ctx context.Context, id uint, image string) (string, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	old := c.Image
	c.Image = image
	if err := s.repo.Update(ctx, c); err != nil {
		return "", err
	}
	return old, nil
}

func (s *service) DeleteCombo(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) GetCombo(ctx context.Context, id uint) (*Combo, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListCombos(ctx context.Context) ([]*Combo, error) {
	return s.repo.List(ctx)
}

// checkBooks 成分图书必须全部存在
func (s *service) checkBooks(ctx context.Context, ids []uint) error {
	books, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint]bool, len(books))
	for _, b := range books {
		found[b.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return ErrInvalidCombo.Withf("套装包含不存在的图书: %d", id)
		}
	}
	return nil
}
