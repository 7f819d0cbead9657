package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/voucher"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建优惠券仓储
func NewVoucherRepository(db *gorm.DB) voucher.Repository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	model := toVoucherModel(v)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return voucher.ErrVoucherDuplicate
		}
		return apperrors.Wrap(err, "创建优惠券失败")
	}
	v.ID = model.ID
	v.CreatedAt = model.CreatedAt
	return nil
}

func (r *voucherRepository) FindByID(ctx context.Context, id uint) (*voucher.Voucher, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *voucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	return r.first(r.db.WithContext(ctx).Where("code = ?", code))
}

// LockByCode SELECT ... FOR UPDATE,防止并发下单超出使用上限
func (r *voucherRepository) LockByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code))
}

func (r *voucherRepository) first(query *gorm.DB) (*voucher.Voucher, error) {
	var model VoucherModel
	if err := query.First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "查询优惠券失败")
	}
	return toVoucherEntity(&model), nil
}

func (r *voucherRepository) List(ctx context.Context) ([]*voucher.Voucher, error) {
	var models []VoucherModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询优惠券列表失败")
	}
	vouchers := make([]*voucher.Voucher, len(models))
	for i := range models {
		vouchers[i] = toVoucherEntity(&models[i])
	}
	return vouchers, nil
}

func (r *voucherRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&VoucherModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除优惠券失败")
	}
	if result.RowsAffected == 0 {
		return voucher.ErrVoucherNotFound
	}
	return nil
}

// IncrementUsage 带条件的原子自增
// UPDATE vouchers SET used_count = used_count + 1 WHERE id = ? AND used_count < usage_limit
func (r *voucherRepository) IncrementUsage(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&VoucherModel{}).
		Where("id = ? AND used_count < usage_limit", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新优惠券使用次数失败")
	}
	if result.RowsAffected == 0 {
		return voucher.ErrVoucherInvalid.Withf("优惠券已达使用上限")
	}
	return nil
}

// DecrementUsage 取消订单时归还使用次数,不会小于0
func (r *voucherRepository) DecrementUsage(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&VoucherModel{}).
		Where("id = ? AND used_count > 0", id).
		Update("used_count", gorm.Expr("used_count - 1"))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新优惠券使用次数失败")
	}
	if result.RowsAffected == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	return nil
}

func toVoucherModel(v *voucher.Voucher) *VoucherModel {
	return &VoucherModel{
		ID:              v.ID,
		Code:            v.Code,
		DiscountPercent: v.DiscountPercent,
		MaxDiscount:     v.MaxDiscount,
		MinOrderAmount:  v.MinOrderAmount,
		ExpiryDate:      v.ExpiryDate,
		UsageLimit:      v.UsageLimit,
		UsedCount:       v.UsedCount,
		CreatedAt:       v.CreatedAt,
	}
}

func toVoucherEntity(m *VoucherModel) *voucher.Voucher {
	return &voucher.Voucher{
		ID:              m.ID,
		Code:            m.Code,
		DiscountPercent: m.DiscountPercent,
		MaxDiscount:     m.MaxDiscount,
		MinOrderAmount:  m.MinOrderAmount,
		ExpiryDate:      m.ExpiryDate,
		UsageLimit:      m.UsageLimit,
		UsedCount:       m.UsedCount,
		CreatedAt:       m.CreatedAt,
	}
}
