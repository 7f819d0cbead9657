package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Service 用户领域服务
// 包含不属于单个实体的业务逻辑(密码加密、验证)
type Service interface {
	// Register 用户注册,角色固定为user
	Register(ctx context.Context, email, password, name string) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// EnsureAdmin 确保管理员账号存在,已存在则不做修改
	EnsureAdmin(ctx context.Context, email, password, name string) (*User, bool, error)

	// ChangePassword 校验原密码后设置新密码
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error

	// ResetPassword 直接设置新密码,调用方负责校验重置凭证
	ResetPassword(ctx context.Context, userID uint, newPassword string) error

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: 12}
}

// NewServiceWithCost 指定bcrypt cost(测试中使用bcrypt.MinCost)
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则:
// 1. 邮箱格式校验
// 2. 密码强度校验(8-20位,包含字母和数字)
// 3. 密码bcrypt加密
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, email, password, name string) (*User, error) {
	u, err := s.newUser(email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 用户登录
// 邮箱不存在与密码错误返回同一个错误,避免探测已注册邮箱
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin 初始化管理员
func (s *service) EnsureAdmin(ctx context.Context, email, password, name string) (*User, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, false, err
	}

	u, err := s.newUser(email, password, name)
	if err != nil {
		return nil, false, err
	}
	u.Role = RoleAdmin
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// ChangePassword 修改密码
// 原密码错误返回ErrInvalidPassword,新密码同样要满足强度规则
func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.ValidatePassword(u.Password, oldPassword); err != nil {
		if errors.Is(err, apperrors.ErrInvalidPassword) {
			return apperrors.ErrInvalidPassword.Withf("原密码错误")
		}
		return err
	}
	return s.setPassword(ctx, u, newPassword)
}

// ResetPassword 重置密码
func (s *service) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, u, newPassword)
}

func (s *service) setPassword(ctx context.Context, u *User, password string) error {
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	u.UpdatedAt = time.Now()
	return s.repo.Update(ctx, u)
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) newUser(email, password, name string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, err
	}
	if n := len([]rune(name)); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-50个字符")
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	return NewUser(email, hashed, name), nil
}

// hash bcrypt自动加盐,cost每+1耗时翻倍
func (s *service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterRe     = regexp.MustCompile(`[a-zA-Z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
)

// isValidEmail 邮箱格式校验
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePasswordStrength 密码强度校验,注册与修改密码共用
// 规则:8-20位,必须包含字母和数字
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !letterRe.MatchString(password) || !digitRe.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
