// Package genre 图书分类
package genre

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Genre 图书分类
type Genre struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

var (
	// ErrGenreNotFound 分类不存在
	ErrGenreNotFound = apperrors.New(apperrors.ErrCodeGenreNotFound, "分类不存在")

	// ErrGenreDuplicate 分类名已存在
	ErrGenreDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "分类名称已存在")

	// ErrInvalidName 分类名不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称不能为空且不超过50个字符")
)

// New 创建分类
func New(name string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, ErrInvalidName
	}
	return &Genre{Name: name, CreatedAt: time.Now()}, nil
}

// Rename 修改名称
func (g *Genre) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return ErrInvalidName
	}
	g.Name = name
	return nil
}

// Repository 分类仓储接口
// 名称唯一性由数据库唯一索引保证,冲突时返回ErrGenreDuplicate
type Repository interface {
	Create(ctx context.Context, g *Genre) error
	FindByID(ctx context.Context, id uint) (*Genre, error)
	Update(ctx context.Context, g *Genre) error
	// Delete 删除分类,所属图书变为未分类
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Genre, error)
	// Search 名称模糊匹配
	Search(ctx context.Context, keyword string) ([]*Genre, error)
}
