package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/report"
)

// ReportRepo report.Repository的内存实现
type ReportRepo struct {
	s *Store
}

var _ report.Repository = (*ReportRepo)(nil)

// BestSellers 直接图书行按销量汇总,已删除的图书不计入
func (r *ReportRepo) BestSellers(_ context.Context, limit int) ([]report.BestSeller, error) {
	defer r.s.guard(false)()
	sold := make(map[uint]int64)
	for _, o := range r.s.data.orders {
		for _, l := range o.Lines {
			if l.BookID != nil {
				sold[*l.BookID] += int64(l.Quantity)
			}
		}
	}

	out := make([]report.BestSeller, 0, len(sold))
	for id, n := range sold {
		b, ok := r.s.data.books[id]
		if !ok {
			continue
		}
		out = append(out, report.BestSeller{
			BookID: id, Title: b.Title, Author: b.Author, Price: b.Price,
			CoverImage: b.CoverImage, TotalSold: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].BookID < out[j].BookID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopRated 按平均评分倒序
func (r *ReportRepo) TopRated(_ context.Context, limit int) ([]report.TopRated, error) {
	defer r.s.guard(false)()
	sums := make(map[uint]int)
	counts := make(map[uint]int64)
	for _, rv := range r.s.data.reviews {
		sums[rv.BookID] += rv.Rating
		counts[rv.BookID]++
	}

	out := make([]report.TopRated, 0, len(counts))
	for id, n := range counts {
		b, ok := r.s.data.books[id]
		if !ok {
			continue
		}
		out = append(out, report.TopRated{
			BookID: id, Title: b.Title, Author: b.Author, Price: b.Price, CoverImage: b.CoverImage,
			AverageRating: float64(sums[id]) / float64(n), ReviewCount: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].BookID < out[j].BookID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeliveredSales 已送达订单
func (r *ReportRepo) DeliveredSales(_ context.Context) ([]report.Sale, error) {
	defer r.s.guard(false)()
	out := make([]report.Sale, 0)
	for _, id := range sortedKeys(r.s.data.orders) {
		o := r.s.data.orders[id]
		if o.Status == order.StatusDelivered {
			out = append(out, report.Sale{Date: o.OrderDate, Amount: o.Total})
		}
	}
	return out, nil
}

// DeliveredTotal 已送达订单总额
func (r *ReportRepo) DeliveredTotal(ctx context.Context) (decimal.Decimal, error) {
	sales, err := r.DeliveredSales(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Amount)
	}
	return total, nil
}
