package order

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/voucher"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// UpdateStatusUseCase 订单状态变更(管理员)
// 取消订单时在同一事务内回补库存并释放优惠券使用次数
// 状态写入以原状态为条件,并发取消同一订单时只有一个请求回补
type UpdateStatusUseCase struct {
	uow    order.UnitOfWork
	logger *zap.Logger
}

// NewUpdateStatusUseCase 创建状态变更用例
func NewUpdateStatusUseCase(uow order.UnitOfWork, logger *zap.Logger) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{uow: uow, logger: logger}
}

// UpdateStatusResponse 变更结果
type UpdateStatusResponse struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
}

// Execute status为英文状态代码,如confirmed
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, id uint, status string) (resp *UpdateStatusResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "UpdateOrderStatus")
	defer func() { tracing.EndSpan(span, err) }()

	target, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *order.Order
	err = uc.uow.Do(ctx, func(ctx context.Context, repos order.Repositories) error {
		o, err := repos.Orders().LockByID(ctx, id)
		if err != nil {
			return err
		}
		from := o.Status
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.Orders().UpdateStatus(ctx, o, from); err != nil {
			return err
		}

		if target == order.StatusCancelled {
			adjuster := inventory.NewAdjuster(repos.Books(), repos.Combos(), uc.logger)
			if err := adjuster.Release(ctx, order.InventoryLines(o.Lines)); err != nil {
				return err
			}
			if o.VoucherID != nil {
				err := repos.Vouchers().DecrementUsage(ctx, *o.VoucherID)
				if errors.Is(err, voucher.ErrVoucherNotFound) {
					uc.logger.Warn("取消订单时优惠券已不存在，跳过", zap.Uint("voucher_id", *o.VoucherID))
				} else if err != nil {
					return err
				}
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncOrderStatusChange(updated.Status.String())
	uc.logger.Info("订单状态已变更",
		zap.Uint("order_id", updated.ID),
		zap.String("order_no", updated.OrderNo),
		zap.String("status", updated.Status.String()),
	)

	return &UpdateStatusResponse{
		OrderID:     updated.ID,
		OrderNo:     updated.OrderNo,
		Status:      updated.Status.String(),
		StatusLabel: updated.Status.Label(),
	}, nil
}

// DeleteOrderUseCase 删除订单(管理员)
// 只删除订单与订单行,不回补库存也不释放优惠券
type DeleteOrderUseCase struct {
	orders order.Repository
	logger *zap.Logger
}

// NewDeleteOrderUseCase 创建删除订单用例
func NewDeleteOrderUseCase(orders order.Repository, logger *zap.Logger) *DeleteOrderUseCase {
	return &DeleteOrderUseCase{orders: orders, logger: logger}
}

// Execute 执行删除
func (uc *DeleteOrderUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.orders.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("订单已删除", zap.Uint("order_id", id))
	return nil
}
