package book

import (
	"context"
	"io"

	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
)

// ImageStore 图片存储,*storage.LocalStore实现了该接口
type ImageStore interface {
	Store(ctx context.Context, kind storage.Kind, r io.Reader, filename string) (string, error)
	Delete(ctx context.Context, kind storage.Kind, ref string) error
	URL(kind storage.Kind, ref string) string
}
