// Package report 报表与统计
//
// 所有查询只读;营收只统计已送达(delivered)的订单。
// 周的定义:周一为一周的第一天,包含1月1日的那一周为第1周。
// 标签补零(2024-W05、2024-03、2024),字典序即时间顺序。
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// DefaultLimit 排行榜条数
const DefaultLimit = 10

// Period 营收统计周期
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ErrInvalidPeriod 不支持的周期
var ErrInvalidPeriod = apperrors.New(apperrors.ErrCodeInvalidParams, "统计周期只能是weekly、monthly或yearly")

// ParsePeriod 解析统计周期
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// WeekOfYear 周一开始、1月1日所在周为第1周
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	offset := (int(jan1.Weekday()) - int(time.Monday) + 7) % 7
	return (t.YearDay()-1+offset)/7 + 1
}

// Label 生成周期标签
func Label(t time.Time, p Period) string {
	switch p {
	case PeriodWeekly:
		return fmt.Sprintf("%04d-W%02d", t.Year(), WeekOfYear(t))
	case PeriodMonthly:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	default:
		return fmt.Sprintf("%04d", t.Year())
	}
}

// Sale 一笔已送达订单
type Sale struct {
	Date   time.Time
	Amount decimal.Decimal
}

// RevenuePoint 单个周期的营收
type RevenuePoint struct {
	Label string
	Total decimal.Decimal
}

// Rollup 按周期汇总,结果按标签升序
func Rollup(sales []Sale, p Period) []RevenuePoint {
	sums := make(map[string]decimal.Decimal)
	for _, s := range sales {
		label := Label(s.Date, p)
		sums[label] = sums[label].Add(s.Amount)
	}

	points := make([]RevenuePoint, 0, len(sums))
	for label, total := range sums {
		points = append(points, RevenuePoint{Label: label, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
	return points
}

// RoundRating 评分保留一位小数
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// BestSeller 畅销书
type BestSeller struct {
	BookID     uint
	Title      string
	Author     string
	Price      decimal.Decimal
	CoverImage string
	TotalSold  int64
}

// TopRated 高分书
type TopRated struct {
	BookID        uint
	Title         string
	Author        string
	Price         decimal.Decimal
	CoverImage    string
	AverageRating float64
	ReviewCount   int64
}

// DashboardStats 后台首页统计
type DashboardStats struct {
	TotalUsers  int64 // 非管理员用户数
	TotalBooks  int64
	TotalCombos int64
	TotalOrders int64
	TotalSales  decimal.Decimal // 已送达订单总额
}

// Repository 报表查询接口
type Repository interface {
	// BestSellers 只统计直接图书行,按销量倒序
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
	// TopRated 按平均评分倒序
	TopRated(ctx context.Context, limit int) ([]TopRated, error)
	// DeliveredSales 全部已送达订单的日期与金额
	DeliveredSales(ctx context.Context) ([]Sale, error)
	// DeliveredTotal 已送达订单总额
	DeliveredTotal(ctx context.Context) (decimal.Decimal, error)
}
