// Package report 报表用例:排行榜、营收汇总与后台统计
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/report"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// ImageURLs 图片引用 → 对外地址
type ImageURLs interface {
	URL(kind storage.Kind, ref string) string
}

// ReportUseCase 报表查询
type ReportUseCase struct {
	reports report.Repository
	users   user.Repository
	books   book.Repository
	combos  combo.Repository
	orders  order.Repository
	images  ImageURLs
}

// NewReportUseCase 创建报表用例
func NewReportUseCase(
	reports report.Repository,
	users user.Repository,
	books book.Repository,
	combos combo.Repository,
	orders order.Repository,
	images ImageURLs,
) *ReportUseCase {
	return &ReportUseCase{
		reports: reports,
		users:   users,
		books:   books,
		combos:  combos,
		orders:  orders,
		images:  images,
	}
}

// BestSellerView 畅销书
type BestSellerView struct {
	BookID        uint            `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL string          `json:"cover_image_url"`
	TotalSold     int64           `json:"total_sold"`
}

// LatestView 新书
type LatestView struct {
	BookID        uint            `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Price         decimal.Decimal `json:"price"`
	PublishedDate time.Time       `json:"published_date"`
	CoverImageURL string          `json:"cover_image_url"`
}

// TopRatedView 高分书,评分保留一位小数
type TopRatedView struct {
	BookID        uint            `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Price         decimal.Decimal `json:"price"`
	CoverImageURL string          `json:"cover_image_url"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
}

// RevenueView 单个周期的营收
type RevenueView struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// DashboardView 后台首页统计
type DashboardView struct {
	TotalUsers  int64           `json:"total_users"`
	TotalBooks  int64           `json:"total_books"`
	TotalCombos int64           `json:"total_combos"`
	TotalOrders int64           `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// BestSellers 销量前10
func (uc *ReportUseCase) BestSellers(ctx context.Context) (views []BestSellerView, err error) {
	ctx, span := tracing.StartSpan(ctx, "Report.BestSellers")
	defer func() { tracing.EndSpan(span, err) }()

	rows, err := uc.reports.BestSellers(ctx, report.DefaultLimit)
	if err != nil {
		return nil, err
	}
	views = make([]BestSellerView, len(rows))
	for i, r := range rows {
		views[i] = BestSellerView{
			BookID:        r.BookID,
			Title:         r.Title,
			Author:        r.Author,
			Price:         r.Price,
			CoverImageURL: uc.images.URL(storage.KindBook, r.CoverImage),
			TotalSold:     r.TotalSold,
		}
	}
	return views, nil
}

// Latest 出版日期最新的10本
func (uc *ReportUseCase) Latest(ctx context.Context) ([]LatestView, error) {
	books, err := uc.books.ListLatest(ctx, report.DefaultLimit)
	if err != nil {
		return nil, err
	}
	views := make([]LatestView, len(books))
	for i, b := range books {
		views[i] = LatestView{
			BookID:        b.ID,
			Title:         b.Title,
			Author:        b.Author,
			Price:         b.Price,
			PublishedDate: b.PublishedDate,
			CoverImageURL: uc.images.URL(storage.KindBook, b.CoverImage),
		}
	}
	return views, nil
}

// TopRated 平均评分前10
func (uc *ReportUseCase) TopRated(ctx context.Context) (views []TopRatedView, err error) {
	ctx, span := tracing.StartSpan(ctx, "Report.TopRated")
	defer func() { tracing.EndSpan(span, err) }()

	rows, err := uc.reports.TopRated(ctx, report.DefaultLimit)
	if err != nil {
		return nil, err
	}
	views = make([]TopRatedView, len(rows))
	for i, r := range rows {
		views[i] = TopRatedView{
			BookID:        r.BookID,
			Title:         r.Title,
			Author:        r.Author,
			Price:         r.Price,
			CoverImageURL: uc.images.URL(storage.KindBook, r.CoverImage),
			AverageRating: report.RoundRating(r.AverageRating),
			ReviewCount:   r.ReviewCount,
		}
	}
	return views, nil
}

// Revenue 按周期汇总已送达订单营收
func (uc *ReportUseCase) Revenue(ctx context.Context, period string) (views []RevenueView, err error) {
	ctx, span := tracing.StartSpan(ctx, "Report.Revenue")
	defer func() { tracing.EndSpan(span, err) }()

	p, err := report.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	sales, err := uc.reports.DeliveredSales(ctx)
	if err != nil {
		return nil, err
	}
	points := report.Rollup(sales, p)
	views = make([]RevenueView, len(points))
	for i, pt := range points {
		views[i] = RevenueView{Label: pt.Label, Total: pt.Total}
	}
	return views, nil
}

// Dashboard 五项统计并发查询
func (uc *ReportUseCase) Dashboard(ctx context.Context) (view *DashboardView, err error) {
	ctx, span := tracing.StartSpan(ctx, "Report.Dashboard")
	defer func() { tracing.EndSpan(span, err) }()

	var stats report.DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = uc.users.CountByRole(ctx, user.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBooks, err = uc.books.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCombos, err = uc.combos.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = uc.orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSales, err = uc.reports.DeliveredTotal(ctx)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardView{
		TotalUsers:  stats.TotalUsers,
		TotalBooks:  stats.TotalBooks,
		TotalCombos: stats.TotalCombos,
		TotalOrders: stats.TotalOrders,
		TotalSales:  stats.TotalSales,
	}, nil
}
