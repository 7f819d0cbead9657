package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/address"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建收货地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	model := &AddressModel{
		UserID:        a.UserID,
		RecipientName: a.RecipientName,
		Address:       a.Address,
		Phone:         a.Phone,
		CreatedAt:     a.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建收货地址失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询收货地址失败")
	}
	return toAddressEntity(&model), nil
}

func (r *addressRepository) FindByIDs(ctx context.Context, ids []uint) ([]*address.Address, error) {
	if len(ids) == 0 {
		return []*address.Address{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uint) ([]*address.Address, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *addressRepository) List(ctx context.Context) ([]*address.Address, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *addressRepository) Update(ctx context.Context, a *address.Address) error {
	result := r.db.WithContext(ctx).Model(&AddressModel{ID: a.ID}).Updates(map[string]interface{}{
		"recipient_name": a.RecipientName,
		"address":        a.Address,
		"phone":          a.Phone,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新收货地址失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete orders.shipping_address_id未建外键,删除前检查引用
func (r *addressRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&OrderModel{}).Where("shipping_address_id = ?", id).Count(&used).Error; err != nil {
			return apperrors.Wrap(err, "查询地址引用失败")
		}
		if used > 0 {
			return address.ErrAddressInUse
		}

		result := tx.Delete(&AddressModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除收货地址失败")
		}
		if result.RowsAffected == 0 {
			return address.ErrAddressNotFound
		}
		return nil
	})
}

func (r *addressRepository) find(query *gorm.DB) ([]*address.Address, error) {
	var models []AddressModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询收货地址失败")
	}
	out := make([]*address.Address, len(models))
	for i := range models {
		out[i] = toAddressEntity(&models[i])
	}
	return out, nil
}

func toAddressEntity(m *AddressModel) *address.Address {
	return &address.Address{
		ID:            m.ID,
		UserID:        m.UserID,
		RecipientName: m.RecipientName,
		Address:       m.Address,
		Phone:         m.Phone,
		CreatedAt:     m.CreatedAt,
	}
}
