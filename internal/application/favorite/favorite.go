package favorite

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
)

// ImageURLs 封面地址解析
type ImageURLs interface {
	URL(kind storage.Kind, ref string) string
}

// FavoriteUseCase 图书收藏
type FavoriteUseCase struct {
	service favorite.Service
	books   book.Repository
	images  ImageURLs
}

// NewFavoriteUseCase 创建收藏用例
func NewFavoriteUseCase(service favorite.Service, books book.Repository, images ImageURLs) *FavoriteUseCase {
	return &FavoriteUseCase{service: service, books: books, images: images}
}

// FavoriteView 收藏
type FavoriteView struct {
	ID            uint            `json:"id"`
	BookID        uint            `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL string          `json:"cover_image_url"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Add 收藏图书,重复收藏返回冲突
func (uc *FavoriteUseCase) Add(ctx context.Context, userID, bookID uint) (*FavoriteView, error) {
	f, err := uc.service.Add(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	views, err := uc.project(ctx, []*favorite.Favorite{f})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List 用户的收藏
func (uc *FavoriteUseCase) List(ctx context.Context, userID uint) ([]FavoriteView, error) {
	favorites, err := uc.service.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, favorites)
}

// Remove 按收藏ID删除,只能删除自己的收藏
func (uc *FavoriteUseCase) Remove(ctx context.Context, id, userID uint) error {
	return uc.service.Remove(ctx, id, userID)
}

// RemoveByBook 按图书取消收藏
func (uc *FavoriteUseCase) RemoveByBook(ctx context.Context, userID, bookID uint) error {
	return uc.service.RemoveByBook(ctx, userID, bookID)
}

func (uc *FavoriteUseCase) project(ctx context.Context, favorites []*favorite.Favorite) ([]FavoriteView, error) {
	ids := make([]uint, len(favorites))
	for i, f := range favorites {
		ids[i] = f.BookID
	}
	books, err := uc.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*book.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	views := make([]FavoriteView, len(favorites))
	for i, f := range favorites {
		v := FavoriteView{ID: f.ID, BookID: f.BookID, CreatedAt: f.CreatedAt}
		if b, ok := byID[f.BookID]; ok {
			v.Title = b.Title
			v.Author = b.Author
			v.Price = b.Price
			v.CoverImageURL = uc.images.URL(storage.KindBook, b.CoverImage)
		}
		views[i] = v
	}
	return views, nil
}
