package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// BootstrapAdminUseCase 启动时按配置初始化管理员账号
type BootstrapAdminUseCase struct {
	userService user.Service
	cfg         config.AdminConfig
	logger      *zap.Logger
}

// NewBootstrapAdminUseCase 创建管理员初始化用例
func NewBootstrapAdminUseCase(userService user.Service, cfg *config.Config, logger *zap.Logger) *BootstrapAdminUseCase {
	return &BootstrapAdminUseCase{userService: userService, cfg: cfg.Admin, logger: logger}
}

// Execute admin.email为空时跳过;邮箱已注册时保持原账号不变
func (uc *BootstrapAdminUseCase) Execute(ctx context.Context) error {
	if uc.cfg.Email == "" {
		uc.logger.Debug("未配置管理员账号，跳过初始化")
		return nil
	}

	name := uc.cfg.Name
	if name == "" {
		name = "管理员"
	}
	u, created, err := uc.userService.EnsureAdmin(ctx, uc.cfg.Email, uc.cfg.Password, name)
	if err != nil {
		return err
	}
	if created {
		uc.logger.Info("已创建管理员账号", zap.String("email", u.Email), zap.Uint("user_id", u.ID))
	}
	return nil
}
