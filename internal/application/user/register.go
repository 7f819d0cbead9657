package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// WelcomeMailer 注册欢迎邮件,尽力而为
type WelcomeMailer interface {
	Welcome(ctx context.Context, email, name string)
}

// RegisterUseCase 用户注册用例
// 注册成功后发送欢迎邮件,邮件失败不影响注册结果
type RegisterUseCase struct {
	userService user.Service
	mailer      WelcomeMailer
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, mailer WelcomeMailer) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		mailer:      mailer,
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}

	uc.mailer.Welcome(ctx, u.Email, u.Name)

	info := toUserInfo(u)
	return &info, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// UserInfo 用户信息,不包含密码
type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Role:  string(u.Role),
	}
}

// ProfileUseCase 当前用户资料
type ProfileUseCase struct {
	users user.Repository
}

// NewProfileUseCase 创建资料用例
func NewProfileUseCase(users user.Repository) *ProfileUseCase {
	return &ProfileUseCase{users: users}
}

// Execute 查询资料
func (uc *ProfileUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
