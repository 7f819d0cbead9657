package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func newService() user.Service {
	return user.NewServiceWithCost(memory.NewStore().Users(), bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	t.Run("正常注册", func(t *testing.T) {
		u, err := svc.Register(ctx, " Alice@Example.com ", "Passw0rd", "爱丽丝")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, "alice@example.com", u.Email, "邮箱应统一为小写")
		assert.Equal(t, user.RoleUser, u.Role)
		assert.NotEqual(t, "Passw0rd", u.Password, "密码必须加密存储")
	})

	t.Run("重复邮箱", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice@example.com", "Passw0rd", "另一个")
		assert.True(t, errors.Is(err, apperrors.ErrEmailDuplicate), "实际错误: %v", err)
	})

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantCode int
	}{
		{"邮箱格式错误", "not-an-email", "Passw0rd", "张三", apperrors.ErrCodeInvalidParams},
		{"密码过短", "a@b.com", "Pw0", "张三", apperrors.ErrCodeWeakPassword},
		{"密码没有数字", "a@b.com", "Password", "张三", apperrors.ErrCodeWeakPassword},
		{"姓名过短", "a@b.com", "Passw0rd", "张", apperrors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.userName)
			require.Error(t, err)
			if code := apperrors.GetAppError(err).Code; code != tt.wantCode {
				t.Errorf("期望错误码%d，实际%d", tt.wantCode, code)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.Register(ctx, "bob@example.com", "Passw0rd", "鲍勃")
	require.NoError(t, err)

	t.Run("正常登录", func(t *testing.T) {
		u, err := svc.Login(ctx, "BOB@example.com", "Passw0rd")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", u.Email)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "Wrong1234")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("邮箱不存在与密码错误返回相同错误", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "Passw0rd")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	admin, created, err := svc.EnsureAdmin(ctx, "admin@bookshop.local", "Admin12345", "管理员")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin())

	again, created, err := svc.EnsureAdmin(ctx, "admin@bookshop.local", "Other12345", "管理员")
	require.NoError(t, err)
	assert.False(t, created, "已存在时不应重复创建")
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.Login(ctx, "admin@bookshop.local", "Admin12345")
	assert.NoError(t, err, "已存在的管理员密码不应被覆盖")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u, err := svc.Register(ctx, "carol@example.com", "Passw0rd", "卡罗尔")
	require.NoError(t, err)

	t.Run("原密码错误", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "Wrong1234", "NewPassw0rd")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("新密码强度不足", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "Passw0rd", "short")
		assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
	})

	t.Run("用户不存在", func(t *testing.T) {
		err := svc.ChangePassword(ctx, 999, "Passw0rd", "NewPassw0rd")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "Passw0rd", "NewPassw0rd"))
	_, err = svc.Login(ctx, "carol@example.com", "Passw0rd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword, "旧密码应失效")
	_, err = svc.Login(ctx, "carol@example.com", "NewPassw0rd")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u, err := svc.Register(ctx, "dave@example.com", "Passw0rd", "戴夫")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, u.ID, "letters-only"), apperrors.ErrWeakPassword)
	require.NoError(t, svc.ResetPassword(ctx, u.ID, "Reset1234"))

	_, err = svc.Login(ctx, "dave@example.com", "Reset1234")
	assert.NoError(t, err)
}
