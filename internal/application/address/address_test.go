package address

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestAddressUseCase(t *testing.T) {
	ctx := context.Background()
	uc := NewAddressUseCase(memory.NewStore().Addresses())

	a, err := uc.Create(ctx, 1, "张三", "北京市海淀区1号", "13800000000")
	require.NoError(t, err)
	assert.Equal(t, uint(1), a.UserID)
	_, err = uc.Create(ctx, 2, "李四", "上海市浦东新区2号", "13900000000")
	require.NoError(t, err)

	_, err = uc.Create(ctx, 1, "", "北京", "13800000000")
	assert.True(t, errors.Is(err, address.ErrInvalidAddress))
	_, err = uc.Create(ctx, 1, "张三", "北京", "abc")
	assert.True(t, errors.Is(err, address.ErrInvalidPhone))

	mine, err := uc.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)

	all, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddressUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := NewAddressUseCase(store.Addresses())

	mine, err := uc.Create(ctx, 1, "张三", "北京市海淀区1号", "13800000000")
	require.NoError(t, err)

	t.Run("本人修改", func(t *testing.T) {
		updated, err := uc.Update(ctx, mine.ID, 1, " 张三丰 ", "北京市朝阳区3号", "13800000001")
		require.NoError(t, err)
		assert.Equal(t, "张三丰", updated.RecipientName)

		got, err := store.Addresses().FindByID(ctx, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, "北京市朝阳区3号", got.Address)
		assert.Equal(t, "13800000001", got.Phone)
	})

	t.Run("他人不能修改", func(t *testing.T) {
		_, err := uc.Update(ctx, mine.ID, 2, "李四", "上海", "13900000000")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("修改内容不合法时保持原值", func(t *testing.T) {
		_, err := uc.Update(ctx, mine.ID, 1, "张三", "北京", "abc")
		assert.ErrorIs(t, err, address.ErrInvalidPhone)
		got, err := store.Addresses().FindByID(ctx, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, "13800000001", got.Phone)
	})

	t.Run("地址不存在", func(t *testing.T) {
		_, err := uc.Update(ctx, 999, 1, "张三", "北京", "13800000000")
		assert.ErrorIs(t, err, address.ErrAddressNotFound)
		assert.ErrorIs(t, uc.Delete(ctx, 999, 1, false), address.ErrAddressNotFound)
	})

	t.Run("他人不能删除,管理员可以", func(t *testing.T) {
		other, err := uc.Create(ctx, 1, "张三", "北京市海淀区5号", "13800000000")
		require.NoError(t, err)
		assert.ErrorIs(t, uc.Delete(ctx, other.ID, 2, false), apperrors.ErrForbidden)
		require.NoError(t, uc.Delete(ctx, other.ID, 2, true))
		_, err = store.Addresses().FindByID(ctx, other.ID)
		assert.ErrorIs(t, err, address.ErrAddressNotFound)
	})

	t.Run("已被订单使用不能删除", func(t *testing.T) {
		used, err := uc.Create(ctx, 1, "张三", "北京市海淀区7号", "13800000000")
		require.NoError(t, err)
		require.NoError(t, store.Orders().Create(ctx, &order.Order{
			OrderNo:           "ORDADDR1",
			UserID:            1,
			ShippingAddressID: used.ID,
			Status:            order.StatusPending,
		}))
		assert.ErrorIs(t, uc.Delete(ctx, used.ID, 1, false), address.ErrAddressInUse)
	})
}
