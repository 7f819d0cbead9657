package address

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/address"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// AddressUseCase 收货地址
type AddressUseCase struct {
	addresses address.Repository
}

// NewAddressUseCase 创建地址用例
func NewAddressUseCase(addresses address.Repository) *AddressUseCase {
	return &AddressUseCase{addresses: addresses}
}

// AddressView 收货地址
type AddressView struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	RecipientName string    `json:"recipient_name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
}

// List 全部地址(管理员)
func (uc *AddressUseCase) List(ctx context.Context) ([]AddressView, error) {
	return toViews(uc.addresses.List(ctx))
}

// ListByUser 用户自己的地址
func (uc *AddressUseCase) ListByUser(ctx context.Context, userID uint) ([]AddressView, error) {
	return toViews(uc.addresses.ListByUser(ctx, userID))
}

// Create 为当前用户新增地址
func (uc *AddressUseCase) Create(ctx context.Context, userID uint, recipient, addr, phone string) (*AddressView, error) {
	a, err := address.New(userID, recipient, addr, phone)
	if err != nil {
		return nil, err
	}
	if err := uc.addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	v := toView(a)
	return &v, nil
}

// Update 修改地址,只有地址所属用户可以修改
func (uc *AddressUseCase) Update(ctx context.Context, id, userID uint, recipient, addr, phone string) (*AddressView, error) {
	a, err := uc.addresses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsOwnedBy(userID) {
		return nil, apperrors.ErrForbidden
	}
	if err := a.Edit(recipient, addr, phone); err != nil {
		return nil, err
	}
	if err := uc.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	v := toView(a)
	return &v, nil
}

// Delete 删除地址,所属用户或管理员
func (uc *AddressUseCase) Delete(ctx context.Context, id, userID uint, isAdmin bool) error {
	a, err := uc.addresses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && !a.IsOwnedBy(userID) {
		return apperrors.ErrForbidden
	}
	return uc.addresses.Delete(ctx, id)
}

func toViews(addresses []*address.Address, err error) ([]AddressView, error) {
	if err != nil {
		return nil, err
	}
	views := make([]AddressView, len(addresses))
	for i, a := range addresses {
		views[i] = toView(a)
	}
	return views, nil
}

func toView(a *address.Address) AddressView {
	return AddressView{
		ID:            a.ID,
		UserID:        a.UserID,
		RecipientName: a.RecipientName,
		Address:       a.Address,
		Phone:         a.Phone,
		CreatedAt:     a.CreatedAt,
	}
}
