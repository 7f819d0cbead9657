package combo

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/pkg/saga"
)

// ImageStore 图片存储
type ImageStore interface {
	Store(ctx context.Context, kind storage.Kind, r io.Reader, filename string) (string, error)
	Delete(ctx context.Context, kind storage.Kind, ref string) error
	URL(kind storage.Kind, ref string) string
}

// ComboUseCase 套装管理与查询
type ComboUseCase struct {
	service combo.Service
	books   book.Repository
	images  ImageStore
	logger  *zap.Logger
}

// NewComboUseCase 创建套装用例
func NewComboUseCase(service combo.Service, books book.Repository, images ImageStore, logger *zap.Logger) *ComboUseCase {
	return &ComboUseCase{service: service, books: books, images: images, logger: logger}
}

// ComboRequest 创建/更新套装
type ComboRequest struct {
	Name          string
	Description   string
	BookIDs       []uint
	TotalPrice    decimal.Decimal
	DiscountPrice decimal.Decimal
	Image         *storage.Upload
}

// ComboView 套装
type ComboView struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Books         []ComboBookView `json:"books"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	ImageURL      string          `json:"image_url"`
}

// ComboBookView 套装中的图书
type ComboBookView struct {
	ID     uint            `json:"id"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Price  decimal.Decimal `json:"price"`
}

// Create 创建套装,带图片时先保存图片,写库失败删除图片
func (uc *ComboUseCase) Create(ctx context.Context, req ComboRequest) (*ComboView, error) {
	c, err := combo.New(req.Name, req.Description, req.BookIDs, req.TotalPrice, req.DiscountPrice)
	if err != nil {
		return nil, err
	}

	s := saga.NewSaga("create_combo", 30*time.Second, uc.logger)
	if req.Image != nil {
		s.AddStep("保存图片",
			func(ctx context.Context) error {
				ref, err := uc.images.Store(ctx, storage.KindCombo, req.Image.Content, req.Image.Filename)
				c.Image = ref
				return err
			},
			func(ctx context.Context) error {
				return uc.images.Delete(ctx, storage.KindCombo, c.Image)
			},
		)
	}
	s.AddStep("写入套装",
		func(ctx context.Context) error {
			return uc.service.CreateCombo(ctx, c)
		},
		nil,
	)
	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info("套装已创建", zap.Uint("combo_id", c.ID), zap.String("name", c.Name))
	return uc.Get(ctx, c.ID)
}

// Update 更新套装,新图片保存成功且写库成功后才删除旧图片
func (uc *ComboUseCase) Update(ctx context.Context, id uint, req ComboRequest) (*ComboView, error) {
	var newImage, oldImage string

	s := saga.NewSaga("update_combo", 30*time.Second, uc.logger)
	if req.Image != nil {
		s.AddStep("保存新图片",
			func(ctx context.Context) error {
				ref, err := uc.images.Store(ctx, storage.KindCombo, req.Image.Content, req.Image.Filename)
				newImage = ref
				return err
			},
			func(ctx context.Context) error {
				return uc.images.Delete(ctx, storage.KindCombo, newImage)
			},
		)
	}
	s.AddStep("更新套装",
		func(ctx context.Context) error {
			_, err := uc.service.UpdateCombo(ctx, id, req.Name, req.Description, req.BookIDs, req.TotalPrice, req.DiscountPrice)
			return err
		},
		nil,
	)
	if req.Image != nil {
		s.AddStep("替换图片",
			func(ctx context.Context) error {
				old, err := uc.service.SetImage(ctx, id, newImage)
				oldImage = old
				return err
			},
			nil,
		)
	}
	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	if oldImage != "" {
		if err := uc.images.Delete(ctx, storage.KindCombo, oldImage); err != nil {
			uc.logger.Warn("删除旧套装图片失败", zap.String("ref", oldImage), zap.Error(err))
		}
	}
	return uc.Get(ctx, id)
}

// Delete 删除套装及其图片
func (uc *ComboUseCase) Delete(ctx context.Context, id uint) error {
	c, err := uc.service.GetCombo(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.service.DeleteCombo(ctx, id); err != nil {
		return err
	}
	if err := uc.images.Delete(ctx, storage.KindCombo, c.Image); err != nil {
		uc.logger.Warn("删除套装图片失败", zap.Uint("combo_id", id), zap.Error(err))
	}
	return nil
}

// Get 套装详情
func (uc *ComboUseCase) Get(ctx context.Context, id uint) (*ComboView, error) {
	c, err := uc.service.GetCombo(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := uc.project(ctx, []*combo.Combo{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List 全部套装
func (uc *ComboUseCase) List(ctx context.Context) ([]ComboView, error) {
	combos, err := uc.service.ListCombos(ctx)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, combos)
}

// project 批量加载成分图书,已删除的图书不展示
func (uc *ComboUseCase) project(ctx context.Context, combos []*combo.Combo) ([]ComboView, error) {
	var ids []uint
	for _, c := range combos {
		ids = append(ids, c.BookIDs...)
	}
	books, err := uc.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*book.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	views := make([]ComboView, len(combos))
	for i, c := range combos {
		v := ComboView{
			ID:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			Books:         make([]ComboBookView, 0, len(c.BookIDs)),
			TotalPrice:    c.TotalPrice,
			DiscountPrice: c.DiscountPrice,
			ImageURL:      uc.images.URL(storage.KindCombo, c.Image),
		}
		for _, bid := range c.BookIDs {
			if b, ok := byID[bid]; ok {
				v.Books = append(v.Books, ComboBookView{ID: b.ID, Title: b.Title, Author: b.Author, Price: b.Price})
			}
		}
		views[i] = v
	}
	return views, nil
}
