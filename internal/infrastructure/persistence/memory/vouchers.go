package memory

import (
	"context"
	"strings"

	"github.com/xiebiao/bookshop/internal/domain/voucher"
)

type voucherRepo struct {
	s  *Store
	tx bool
}

func (r *voucherRepo) Create(_ context.Context, v *voucher.Voucher) error {
	defer r.s.guard(r.tx)()
	for _, existing := range r.s.data.vouchers {
		if existing.Code == v.Code {
			return voucher.ErrVoucherDuplicate
		}
	}
	v.ID = r.s.data.nextID("vouchers")
	r.s.data.vouchers[v.ID] = copyVoucher(v)
	return nil
}

func (r *voucherRepo) FindByID(_ context.Context, id uint) (*voucher.Voucher, error) {
	defer r.s.guard(r.tx)()
	v, ok := r.s.data.vouchers[id]
	if !ok {
		return nil, voucher.ErrVoucherNotFound
	}
	return copyVoucher(v), nil
}

func (r *voucherRepo) FindByCode(_ context.Context, code string) (*voucher.Voucher, error) {
	defer r.s.guard(r.tx)()
	for _, v := range r.s.data.vouchers {
		if v.Code == strings.TrimSpace(code) {
			return copyVoucher(v), nil
		}
	}
	return nil, voucher.ErrVoucherNotFound
}

func (r *voucherRepo) LockByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	return r.FindByCode(ctx, code)
}

func (r *voucherRepo) List(_ context.Context) ([]*voucher.Voucher, error) {
	defer r.s.guard(r.tx)()
	out := make([]*voucher.Voucher, 0, len(r.s.data.vouchers))
	for _, id := range sortedKeys(r.s.data.vouchers) {
		out = append(out, copyVoucher(r.s.data.vouchers[id]))
	}
	return out, nil
}

func (r *voucherRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.vouchers[id]; !ok {
		return voucher.ErrVoucherNotFound
	}
	delete(r.s.data.vouchers, id)
	return nil
}

func (r *voucherRepo) IncrementUsage(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("vouchers.IncrementUsage"); err != nil {
		return err
	}
	v, ok := r.s.data.vouchers[id]
	if !ok || v.UsedCount >= v.UsageLimit {
		return voucher.ErrVoucherInvalid.Withf("优惠券已达使用上限")
	}
	v.UsedCount++
	return nil
}

func (r *voucherRepo) DecrementUsage(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	v, ok := r.s.data.vouchers[id]
	if !ok {
		return voucher.ErrVoucherNotFound
	}
	if v.UsedCount > 0 {
		v.UsedCount--
	}
	return nil
}
