// Package address 收货地址
package address

import (
	"context"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Address 收货地址,归属于一个用户
type Address struct {
	ID            uint
	UserID        uint
	RecipientName string
	Address       string
	Phone         string
	CreatedAt     time.Time
}

var (
	// ErrAddressNotFound 地址不存在或不属于当前用户
	ErrAddressNotFound = apperrors.New(apperrors.ErrCodeAddressNotFound, "收货地址不存在")

	// ErrInvalidAddress 地址信息不完整
	ErrInvalidAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "收货人、地址和电话不能为空")

	// ErrInvalidPhone 电话格式错误
	ErrInvalidPhone = apperrors.New(apperrors.ErrCodeInvalidParams, "电话号码格式不正确")

	// ErrAddressInUse 已有订单使用该地址
	ErrAddressInUse = apperrors.New(apperrors.ErrCodeBusinessError, "收货地址已被订单使用，不能删除")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\- ]{5,19}$`)

// New 创建地址
func New(userID uint, recipient, addr, phone string) (*Address, error) {
	a := &Address{UserID: userID, CreatedAt: time.Now()}
	if err := a.Edit(recipient, addr, phone); err != nil {
		return nil, err
	}
	return a, nil
}

// Edit 修改收货信息,校验规则与New一致,失败时不修改
func (a *Address) Edit(recipient, addr, phone string) error {
	recipient, addr, phone = strings.TrimSpace(recipient), strings.TrimSpace(addr), strings.TrimSpace(phone)
	if recipient == "" || addr == "" || phone == "" {
		return ErrInvalidAddress
	}
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	a.RecipientName, a.Address, a.Phone = recipient, addr, phone
	return nil
}

// IsOwnedBy 是否属于指定用户
func (a *Address) IsOwnedBy(userID uint) bool {
	return a.UserID == userID
}

// Repository 收货地址仓储接口
type Repository interface {
	Create(ctx context.Context, a *Address) error
	FindByID(ctx context.Context, id uint) (*Address, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*Address, error)
	ListByUser(ctx context.Context, userID uint) ([]*Address, error)
	List(ctx context.Context) ([]*Address, error)

	// Update 只更新收货人、地址和电话
	Update(ctx context.Context, a *Address) error

	// Delete 删除地址,已被订单引用时返回ErrAddressInUse
	Delete(ctx context.Context, id uint) error
}
