package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ---------- orders ----------

type orderRepo struct {
	s  *Store
	tx bool
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("orders.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.data.orders {
		if existing.OrderNo == o.OrderNo {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号重复")
		}
	}
	o.ID = r.s.data.nextID("orders")
	for i := range o.Lines {
		o.Lines[i].ID = r.s.data.nextID("order_lines")
		o.Lines[i].OrderID = o.ID
	}
	r.s.data.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	defer r.s.guard(r.tx)()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *orderRepo) List(_ context.Context) ([]*order.Order, error) {
	defer r.s.guard(r.tx)()
	return r.filter(func(*order.Order) bool { return true }), nil
}

func (r *orderRepo) ListByUser(_ context.Context, userID uint) ([]*order.Order, error) {
	defer r.s.guard(r.tx)()
	return r.filter(func(o *order.Order) bool { return o.UserID == userID }), nil
}

// filter 按下单时间倒序,调用方持有锁
func (r *orderRepo) filter(keep func(*order.Order) bool) []*order.Order {
	out := make([]*order.Order, 0)
	for _, id := range sortedKeys(r.s.data.orders) {
		if o := r.s.data.orders[id]; keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out
}

// LockByID 事务内已持有全局锁,等同于FindByID
func (r *orderRepo) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, o *order.Order, from order.Status) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("orders.UpdateStatus"); err != nil {
		return err
	}
	stored, ok := r.s.data.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if stored.Status != from {
		return order.ErrInvalidStatusTransition
	}
	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.s.data.orders, id)
	return nil
}

func (r *orderRepo) Count(_ context.Context) (int64, error) {
	defer r.s.guard(r.tx)()
	return int64(len(r.s.data.orders)), nil
}

// ---------- addresses ----------

type addressRepo struct {
	s  *Store
	tx bool
}

func (r *addressRepo) Create(_ context.Context, a *address.Address) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("addresses.Create"); err != nil {
		return err
	}
	a.ID = r.s.data.nextID("addresses")
	cp := *a
	r.s.data.addresses[a.ID] = &cp
	return nil
}

func (r *addressRepo) FindByID(_ context.Context, id uint) (*address.Address, error) {
	defer r.s.guard(r.tx)()
	a, ok := r.s.data.addresses[id]
	if !ok {
		return nil, address.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *addressRepo) FindByIDs(_ context.Context, ids []uint) ([]*address.Address, error) {
	defer r.s.guard(r.tx)()
	out := make([]*address.Address, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if a, ok := r.s.data.addresses[id]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *addressRepo) ListByUser(_ context.Context, userID uint) ([]*address.Address, error) {
	defer r.s.guard(r.tx)()
	out := make([]*address.Address, 0)
	for _, id := range sortedKeys(r.s.data.addresses) {
		if a := r.s.data.addresses[id]; a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *addressRepo) Update(_ context.Context, a *address.Address) error {
	defer r.s.guard(r.tx)()
	stored, ok := r.s.data.addresses[a.ID]
	if !ok {
		return address.ErrAddressNotFound
	}
	stored.RecipientName = a.RecipientName
	stored.Address = a.Address
	stored.Phone = a.Phone
	return nil
}

func (r *addressRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.addresses[id]; !ok {
		return address.ErrAddressNotFound
	}
	for _, o := range r.s.data.orders {
		if o.ShippingAddressID == id {
			return address.ErrAddressInUse
		}
	}
	delete(r.s.data.addresses, id)
	return nil
}

func (r *addressRepo) List(_ context.Context) ([]*address.Address, error) {
	defer r.s.guard(r.tx)()
	out := make([]*address.Address, 0, len(r.s.data.addresses))
	for _, id := range sortedKeys(r.s.data.addresses) {
		cp := *r.s.data.addresses[id]
		out = append(out, &cp)
	}
	return out, nil
}
