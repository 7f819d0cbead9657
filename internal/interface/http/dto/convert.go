package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// DateLayout 日期参数格式
const DateLayout = "2006-01-02"

// ParseDecimal 解析金额,空字符串返回nil
func ParseDecimal(field, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, field+"格式错误")
	}
	return &d, nil
}

// ParseDate 解析YYYY-MM-DD日期(本地时区),空字符串返回nil
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, field+"格式应为YYYY-MM-DD")
	}
	return &t, nil
}

// RequireDecimal 必填金额
func RequireDecimal(field, s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(field, s)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, apperrors.New(apperrors.ErrCodeInvalidParams, field+"不能为空")
	}
	return *d, nil
}

// RequireDate 必填日期
func RequireDate(field, s string) (time.Time, error) {
	t, err := ParseDate(field, s)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, apperrors.New(apperrors.ErrCodeInvalidParams, field+"不能为空")
	}
	return *t, nil
}
