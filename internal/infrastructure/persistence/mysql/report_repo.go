package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/report"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// reportRepository 报表查询,聚合在SQL中完成
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) report.Repository {
	return &reportRepository{db: db}
}

// BestSellers 只统计直接购买的图书行,套装行不计入
func (r *reportRepository) BestSellers(ctx context.Context, limit int) ([]report.BestSeller, error) {
	var rows []report.BestSeller
	err := r.db.WithContext(ctx).Table("order_lines AS ol").
		Select("b.id AS book_id, b.title, b.author, b.price, b.cover_image, SUM(ol.quantity) AS total_sold").
		Joins("JOIN books b ON b.id = ol.book_id").
		Group("b.id, b.title, b.author, b.price, b.cover_image").
		Order("total_sold DESC").
		Order("b.id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询畅销书失败")
	}
	return rows, nil
}

// TopRated 平均评分原样返回,展示时再四舍五入
func (r *reportRepository) TopRated(ctx context.Context, limit int) ([]report.TopRated, error) {
	var rows []report.TopRated
	err := r.db.WithContext(ctx).Table("reviews AS rv").
		Select("b.id AS book_id, b.title, b.author, b.price, b.cover_image, AVG(rv.rating) AS average_rating, COUNT(*) AS review_count").
		Joins("JOIN books b ON b.id = rv.book_id").
		Group("b.id, b.title, b.author, b.price, b.cover_image").
		Order("average_rating DESC").
		Order("b.id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询高分图书失败")
	}
	return rows, nil
}

// DeliveredSales 已送达订单的下单时间与金额,由领域层按周期汇总
func (r *reportRepository) DeliveredSales(ctx context.Context) ([]report.Sale, error) {
	var rows []struct {
		OrderDate time.Time
		Total     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Select("order_date, total").
		Where("status = ?", int(order.StatusDelivered)).
		Order("order_date").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询销售额失败")
	}

	sales := make([]report.Sale, len(rows))
	for i, row := range rows {
		sales[i] = report.Sale{Date: row.OrderDate, Amount: row.Total}
	}
	return sales, nil
}

func (r *reportRepository) DeliveredTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Select("SUM(total)").
		Where("status = ?", int(order.StatusDelivered)).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(err, "统计销售总额失败")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
