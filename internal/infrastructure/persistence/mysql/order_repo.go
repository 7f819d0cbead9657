package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// Order和OrderLine是聚合关系,一起保存;查询时Preload订单行避免N+1
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单,订单行随订单一起插入
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号重复")
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	for i := range o.Lines {
		o.Lines[i].ID = model.Lines[i].ID
		o.Lines[i].OrderID = model.ID
	}
	return nil
}

// FindByID Preload("Lines")会执行两条SQL:
// 1. SELECT * FROM orders WHERE id = ?
// 2. SELECT * FROM order_lines WHERE order_id IN (?)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Preload("Lines", orderByID).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) List(ctx context.Context) ([]*order.Order, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]*order.Order, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *orderRepository) find(query *gorm.DB) ([]*order.Order, error) {
	var models []OrderModel
	err := query.Preload("Lines", orderByID).
		Order("order_date DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, nil
}

// LockByID 锁定订单行,并发的状态变更在此排队
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines", orderByID).
		First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 只更新状态,订单行创建后不再变化
// WHERE带上原状态,状态已被其他请求改掉时影响行数为0
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", o.ID, int(from)).
		Updates(map[string]interface{}{
			"status":     int(o.Status),
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询订单失败")
	}
	if count == 0 {
		return order.ErrOrderNotFound
	}
	return order.ErrInvalidStatusTransition
}

// Delete 删除订单及订单行
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderLineModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除订单行失败")
		}
		result := tx.Delete(&OrderModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除订单失败")
		}
		if result.RowsAffected == 0 {
			return order.ErrOrderNotFound
		}
		return nil
	})
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计订单失败")
	}
	return n, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineModel{
			ID:        l.ID,
			OrderID:   l.OrderID,
			BookID:    l.BookID,
			ComboID:   l.ComboID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	return &OrderModel{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		UserID:            o.UserID,
		ShippingAddressID: o.ShippingAddressID,
		OrderDate:         o.OrderDate,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Total:             o.Total,
		Status:            int(o.Status),
		PaymentMethod:     o.PaymentMethod,
		IsPaid:            o.IsPaid,
		VoucherID:         o.VoucherID,
		Lines:             lines,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(m *OrderModel) *order.Order {
	lines := make([]order.Line, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = order.Line{
			ID:        l.ID,
			OrderID:   l.OrderID,
			BookID:    l.BookID,
			ComboID:   l.ComboID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	return &order.Order{
		ID:                m.ID,
		OrderNo:           m.OrderNo,
		UserID:            m.UserID,
		ShippingAddressID: m.ShippingAddressID,
		OrderDate:         m.OrderDate,
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		Total:             m.Total,
		Status:            order.Status(m.Status),
		PaymentMethod:     m.PaymentMethod,
		IsPaid:            m.IsPaid,
		VoucherID:         m.VoucherID,
		Lines:             lines,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
