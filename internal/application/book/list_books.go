package book

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/domain/report"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
)

// QueryBooksUseCase 图书查询
// 列表与详情都附带平均评分,评分在读取时按图书批量计算
type QueryBooksUseCase struct {
	bookService book.Service
	genres      genre.Repository
	reviews     review.Repository
	images      ImageStore
}

// NewQueryBooksUseCase 创建查询用例
func NewQueryBooksUseCase(bookService book.Service, genres genre.Repository, reviews review.Repository, images ImageStore) *QueryBooksUseCase {
	return &QueryBooksUseCase{
		bookService: bookService,
		genres:      genres,
		reviews:     reviews,
		images:      images,
	}
}

// BookView 图书
type BookView struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	GenreID       uint            `json:"genre_id,omitempty"`
	GenreName     string          `json:"genre_name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	PublishedDate time.Time       `json:"published_date"`
	Description   string          `json:"description"`
	CoverImageURL string          `json:"cover_image_url"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
}

// SearchRequest 高级搜索
type SearchRequest = book.SearchParams

// List 全部图书
func (uc *QueryBooksUseCase) List(ctx context.Context) ([]BookView, error) {
	books, err := uc.bookService.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, books)
}

// Get 图书详情
func (uc *QueryBooksUseCase) Get(ctx context.Context, id uint) (*BookView, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := uc.project(ctx, []*book.Book{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Search 关键词/分类/价格/出版日期搜索
func (uc *QueryBooksUseCase) Search(ctx context.Context, req SearchRequest) ([]BookView, error) {
	books, err := uc.bookService.SearchBooks(ctx, req)
	if err != nil {
		return nil, err
	}
	return uc.project(ctx, books)
}

// ListByGenre 指定分类的图书,分类必须存在
func (uc *QueryBooksUseCase) ListByGenre(ctx context.Context, genreID uint) ([]BookView, error) {
	if _, err := uc.genres.FindByID(ctx, genreID); err != nil {
		return nil, err
	}
	return uc.Search(ctx, book.SearchParams{GenreID: genreID, SortBy: book.SortByTitle, Ascending: true})
}

func (uc *QueryBooksUseCase) project(ctx context.Context, books []*book.Book) ([]BookView, error) {
	ids := make([]uint, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	ratings, err := uc.reviews.Ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	genres, err := uc.genres.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}

	views := make([]BookView, len(books))
	for i, b := range books {
		v := toBookView(b, uc.images, ratings)
		v.GenreName = names[b.GenreID]
		views[i] = v
	}
	return views, nil
}

func toBookView(b *book.Book, images ImageStore, ratings map[uint]review.Rating) BookView {
	v := BookView{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		GenreID:       b.GenreID,
		Price:         b.Price,
		Stock:         b.Stock,
		PublishedDate: b.PublishedDate,
		Description:   b.Description,
		CoverImageURL: images.URL(storage.KindBook, b.CoverImage),
	}
	if r, ok := ratings[b.ID]; ok {
		v.AverageRating = report.RoundRating(r.Average)
		v.ReviewCount = r.Count
	}
	return v
}
