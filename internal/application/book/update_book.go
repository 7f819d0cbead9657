package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/pkg/saga"
)

// UpdateBookUseCase 更新图书(管理员)
// 带新封面时:保存新封面 → 更新图书 → 替换封面引用,成功后删除旧封面
type UpdateBookUseCase struct {
	bookService book.Service
	images      ImageStore
	logger      *zap.Logger
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, images ImageStore, logger *zap.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, images: images, logger: logger}
}

// UpdateBookRequest 更新请求,nil字段保持不变
type UpdateBookRequest struct {
	ID     uint
	Params book.UpdateParams
	Cover  *storage.Upload
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookView, error) {
	var (
		updated  *book.Book
		newCover string
		oldCover string
	)

	s := saga.NewSaga("update_book", sagaTimeout, uc.logger)
	if req.Cover != nil {
		s.AddStep("保存新封面",
			func(ctx context.Context) error {
				ref, err := uc.images.Store(ctx, storage.KindBook, req.Cover.Content, req.Cover.Filename)
				newCover = ref
				return err
			},
			func(ctx context.Context) error {
				return uc.images.Delete(ctx, storage.KindBook, newCover)
			},
		)
	}
	s.AddStep("更新图书",
		func(ctx context.Context) error {
			b, err := uc.bookService.UpdateBook(ctx, req.ID, req.Params)
			updated = b
			return err
		},
		nil,
	)
	if req.Cover != nil {
		s.AddStep("替换封面",
			func(ctx context.Context) error {
				old, err := uc.bookService.SetCover(ctx, req.ID, newCover)
				if err != nil {
					return err
				}
				oldCover = old
				updated.CoverImage = newCover
				return nil
			},
			nil,
		)
	}

	if err := s.Execute(ctx); err != nil {
		return nil, err
	}

	if oldCover != "" {
		if err := uc.images.Delete(ctx, storage.KindBook, oldCover); err != nil {
			uc.logger.Warn("删除旧封面失败", zap.String("ref", oldCover), zap.Error(err))
		}
	}

	view := toBookView(updated, uc.images, nil)
	return &view, nil
}

// DeleteBookUseCase 删除图书(管理员),同时删除封面文件
type DeleteBookUseCase struct {
	bookService book.Service
	images      ImageStore
	logger      *zap.Logger
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, images ImageStore, logger *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, images: images, logger: logger}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}
	if err := uc.images.Delete(ctx, storage.KindBook, b.CoverImage); err != nil {
		uc.logger.Warn("删除封面失败", zap.Uint("book_id", id), zap.String("ref", b.CoverImage), zap.Error(err))
	}
	uc.logger.Info("图书已删除", zap.Uint("book_id", id))
	return nil
}
