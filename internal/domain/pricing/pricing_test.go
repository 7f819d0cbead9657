package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

var today = time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mapLookup 按券码返回优惠券
type mapLookup map[string]*voucher.Voucher

func (m mapLookup) FindByCode(_ context.Context, code string) (*voucher.Voucher, error) {
	v, ok := m[code]
	if !ok {
		return nil, voucher.ErrVoucherNotFound
	}
	return v, nil
}

func save10() *voucher.Voucher {
	return &voucher.Voucher{
		ID:              1,
		Code:            "SAVE10",
		DiscountPercent: d("10"),
		MaxDiscount:     d("2.00"),
		MinOrderAmount:  d("20.00"),
		ExpiryDate:      today.AddDate(0, 1, 0),
		UsageLimit:      100,
	}
}

func TestEvaluateWithoutVoucher(t *testing.T) {
	lines := []Line{
		{UnitPrice: d("10.00"), Quantity: 3},
		{UnitPrice: d("4.50"), Quantity: 2},
	}

	q, err := Evaluate(context.Background(), lines, "", mapLookup{}, today)
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(d("39.00")), "小计应为39.00，实际%s", q.Subtotal)
	assert.True(t, q.Discount.IsZero())
	assert.True(t, q.Total.Equal(q.Subtotal))
	assert.Nil(t, q.Voucher)
}

func TestEvaluateSave10(t *testing.T) {
	v := save10()
	lines := []Line{{UnitPrice: d("10.00"), Quantity: 3}}

	q, err := Evaluate(context.Background(), lines, "SAVE10", mapLookup{"SAVE10": v}, today)
	require.NoError(t, err)

	assert.True(t, q.Subtotal.Equal(d("30.00")))
	assert.True(t, q.Discount.Equal(d("2.00")), "优惠应封顶2.00，实际%s", q.Discount)
	assert.True(t, q.Total.Equal(d("28.00")))
	assert.Same(t, v, q.Voucher)
	assert.Equal(t, 0, v.UsedCount, "计价不应修改优惠券")
}

func TestEvaluatePercentBelowCap(t *testing.T) {
	v := save10()
	v.MaxDiscount = d("50.00")
	lines := []Line{{UnitPrice: d("12.34"), Quantity: 2}}

	q, err := Evaluate(context.Background(), lines, "SAVE10", mapLookup{"SAVE10": v}, today)
	require.NoError(t, err)

	// 24.68 * 10% = 2.468,不做额外舍入
	assert.True(t, q.Discount.Equal(d("2.468")), "实际%s", q.Discount)
	assert.True(t, q.Total.Equal(d("22.212")), "实际%s", q.Total)
}

func TestEvaluateDiscountClampedToSubtotal(t *testing.T) {
	v := save10()
	v.DiscountPercent = d("100")
	v.MaxDiscount = d("1000")
	v.MinOrderAmount = decimal.Zero
	lines := []Line{{UnitPrice: d("5.00"), Quantity: 1}}

	q, err := Evaluate(context.Background(), lines, "SAVE10", mapLookup{"SAVE10": v}, today)
	require.NoError(t, err)

	assert.True(t, q.Discount.Equal(d("5.00")))
	assert.True(t, q.Total.IsZero())
	assert.False(t, q.Total.IsNegative())
}

func TestEvaluateVoucherInvalid(t *testing.T) {
	lines := []Line{{UnitPrice: d("10.00"), Quantity: 3}}

	tests := []struct {
		name   string
		code   string
		mutate func(v *voucher.Voucher)
		lines  []Line
	}{
		{name: "券码不存在", code: "NOPE"},
		{name: "已过期", code: "SAVE10", mutate: func(v *voucher.Voucher) { v.ExpiryDate = today.AddDate(0, 0, -1) }},
		{name: "已用完", code: "SAVE10", mutate: func(v *voucher.Voucher) { v.UsedCount = v.UsageLimit }},
		{name: "未达最低金额", code: "SAVE10", lines: []Line{{UnitPrice: d("5.00"), Quantity: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := save10()
			if tt.mutate != nil {
				tt.mutate(v)
			}
			in := lines
			if tt.lines != nil {
				in = tt.lines
			}

			_, err := Evaluate(context.Background(), in, tt.code, mapLookup{"SAVE10": v}, today)
			if !errors.Is(err, voucher.ErrVoucherInvalid) {
				t.Errorf("期望ErrVoucherInvalid，实际%v", err)
			}
		})
	}
}

func TestEvaluateExpiresEndOfDay(t *testing.T) {
	v := save10()
	// 到期日当天仍然可用
	v.ExpiryDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	lines := []Line{{UnitPrice: d("10.00"), Quantity: 3}}

	_, err := Evaluate(context.Background(), lines, "SAVE10", mapLookup{"SAVE10": v}, today)
	assert.NoError(t, err)
}

func TestEvaluateLookupError(t *testing.T) {
	boom := errors.New("连接断开")
	lookup := LookupFunc(func(context.Context, string) (*voucher.Voucher, error) {
		return nil, boom
	})

	_, err := Evaluate(context.Background(), []Line{{UnitPrice: d("1"), Quantity: 1}}, "SAVE10", lookup, today)
	assert.ErrorIs(t, err, boom)
}
