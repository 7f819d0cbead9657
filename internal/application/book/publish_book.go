package book

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/pkg/saga"
)

// sagaTimeout 保存封面与写库的总超时
const sagaTimeout = 30 * time.Second

// PublishBookUseCase 图书上架用例(管理员)
// 带封面时以Saga执行:保存封面 → 写入图书,写库失败时删除已保存的封面
type PublishBookUseCase struct {
	bookService book.Service
	images      ImageStore
	logger      *zap.Logger
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service, images ImageStore, logger *zap.Logger) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
		images:      images,
		logger:      logger,
	}
}

// PublishBookRequest 上架请求
type PublishBookRequest struct {
	Title         string
	Author        string
	GenreID       uint
	Price         decimal.Decimal
	Stock         int
	PublishedDate time.Time
	Description   string
	Cover         *storage.Upload // 可选
}

// Execute 执行上架
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookView, error) {
	b := book.NewBook(req.Title, req.Author, req.GenreID, req.Price, req.Stock, req.PublishedDate, req.Description)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	s := saga.NewSaga("publish_book", sagaTimeout, uc.logger)
	if req.Cover != nil {
		s.AddStep("保存封面",
			func(ctx context.Context) error {
				ref, err := uc.images.Store(ctx, storage.KindBook, req.Cover.Content, req.Cover.Filename)
				if err != nil {
					return err
				}
				b.CoverImage = ref
				return nil
			},
			func(ctx context.Context) error {
				return uc.images.Delete(ctx, storage.KindBook, b.CoverImage)
			},
		)
	}
	s.AddStep("写入图书",
		func(ctx context.Context) error {
			return uc.bookService.CreateBook(ctx, b)
		},
		nil,
	)

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("title", b.Title))
	view := toBookView(b, uc.images, nil)
	return &view, nil
}
