package user

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ResetTokens 找回密码凭证,*redis.ResetTokenStore实现了该接口
type ResetTokens interface {
	SaveResetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (uint, error)
}

// PasswordResetMailer 找回密码邮件,尽力而为
type PasswordResetMailer interface {
	PasswordReset(ctx context.Context, email, name, link string, ttl time.Duration)
}

// PasswordUseCase 修改密码与找回密码
// 密码变更后删除会话,其他设备需要重新登录
type PasswordUseCase struct {
	userService user.Service
	users       user.Repository
	tokens      ResetTokens
	sessions    SessionStore
	mailer      PasswordResetMailer
	cfg         config.PasswordConfig
	logger      *zap.Logger
}

// NewPasswordUseCase 创建密码用例
func NewPasswordUseCase(
	userService user.Service,
	users user.Repository,
	tokens ResetTokens,
	sessions SessionStore,
	mailer PasswordResetMailer,
	cfg *config.Config,
	logger *zap.Logger,
) *PasswordUseCase {
	return &PasswordUseCase{
		userService: userService,
		users:       users,
		tokens:      tokens,
		sessions:    sessions,
		mailer:      mailer,
		cfg:         cfg.Password,
		logger:      logger,
	}
}

// Change 已登录用户修改密码
func (uc *PasswordUseCase) Change(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if err := uc.userService.ChangePassword(ctx, userID, oldPassword, newPassword); err != nil {
		return err
	}
	uc.dropSession(ctx, userID)
	uc.logger.Info("用户已修改密码", zap.Uint("user_id", userID))
	return nil
}

// Forgot 发送重置邮件
// 邮箱未注册时同样返回成功,不暴露注册情况
func (uc *PasswordUseCase) Forgot(ctx context.Context, email string) error {
	u, err := uc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			uc.logger.Debug("找回密码的邮箱未注册", zap.String("email", email))
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := uc.tokens.SaveResetToken(ctx, token, u.ID, uc.cfg.ResetTokenExpire); err != nil {
		return err
	}
	uc.mailer.PasswordReset(ctx, u.Email, u.Name, uc.resetLink(token), uc.cfg.ResetTokenExpire)
	return nil
}

// Reset 使用邮件中的凭证设置新密码
// 先校验密码强度,弱密码不会消耗凭证
func (uc *PasswordUseCase) Reset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ErrResetTokenInvalid
	}
	if err := user.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	userID, err := uc.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}
	if err := uc.userService.ResetPassword(ctx, userID, newPassword); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return err
	}
	uc.dropSession(ctx, userID)
	uc.logger.Info("用户已重置密码", zap.Uint("user_id", userID))
	return nil
}

func (uc *PasswordUseCase) resetLink(token string) string {
	sep := "?"
	if strings.Contains(uc.cfg.ResetURL, "?") {
		sep = "&"
	}
	return uc.cfg.ResetURL + sep + "token=" + url.QueryEscape(token)
}

func (uc *PasswordUseCase) dropSession(ctx context.Context, userID uint) {
	if err := uc.sessions.DeleteSession(ctx, userID); err != nil {
		uc.logger.Warn("删除会话失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}
