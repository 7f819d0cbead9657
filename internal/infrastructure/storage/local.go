// Package storage 图片存储
//
// 文件保存在 {base_dir}/images/{books|combos}/{uuid}{ext},数据库只保存文件名,
// 对外地址为 {public_base_url}/images/{books|combos}/{文件名},由gin的静态路由提供。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Kind 图片分类,对应子目录
type Kind string

const (
	KindBook  Kind = "books"
	KindCombo Kind = "combos"
)

// ImagesDir 相对base_dir的图片根目录,也是静态路由前缀
const ImagesDir = "images"

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var (
	// ErrUnsupportedImage 不支持的图片格式
	ErrUnsupportedImage = apperrors.New(apperrors.ErrCodeInvalidParams, "仅支持jpg、jpeg、png、gif、webp格式的图片")

	// ErrImageTooLarge 图片超过大小限制
	ErrImageTooLarge = apperrors.New(apperrors.ErrCodeInvalidParams, "图片大小超过限制")

	// ErrInvalidRef 非法的文件引用
	ErrInvalidRef = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的图片引用")
)

// Upload 待保存的上传文件
type Upload struct {
	Filename string
	Content  io.Reader
}

// LocalStore 本地磁盘存储
type LocalStore struct {
	baseDir   string
	publicURL string
	maxSize   int64
	logger    *zap.Logger
}

// NewLocalStore 创建本地存储并确保目录存在
func NewLocalStore(cfg *config.Config, logger *zap.Logger) (*LocalStore, error) {
	s := &LocalStore{
		baseDir:   cfg.Storage.BaseDir,
		publicURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
		maxSize:   cfg.Storage.MaxUploadSize,
		logger:    logger,
	}
	for _, kind := range []Kind{KindBook, KindCombo} {
		if err := os.MkdirAll(s.dir(kind), 0o755); err != nil {
			return nil, fmt.Errorf("创建图片目录失败: %w", err)
		}
	}
	return s, nil
}

// Root 静态文件根目录 {base_dir}/images
func (s *LocalStore) Root() string {
	return filepath.Join(s.baseDir, ImagesDir)
}

// Store 保存图片,返回生成的文件名
// 写入失败或超过大小限制时删除半成品文件
func (s *LocalStore) Store(ctx context.Context, kind Kind, r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + ext
	path := filepath.Join(s.dir(kind), ref)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", &apperrors.AppError{Code: apperrors.ErrCodeStorageError, Message: "保存图片失败", Err: err}
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = ErrImageTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrImageTooLarge) {
			return "", ErrImageTooLarge.Withf("图片大小不能超过%dKB", s.maxSize/1024)
		}
		return "", &apperrors.AppError{Code: apperrors.ErrCodeStorageError, Message: "保存图片失败", Err: err}
	}

	s.logger.Debug("图片已保存", zap.String("kind", string(kind)), zap.String("ref", ref), zap.Int64("bytes", n))
	return ref, nil
}

// Delete 删除图片,文件不存在视为成功
func (s *LocalStore) Delete(_ context.Context, kind Kind, ref string) error {
	if ref == "" {
		return nil
	}
	if !validRef(ref) {
		return ErrInvalidRef
	}
	if err := os.Remove(filepath.Join(s.dir(kind), ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &apperrors.AppError{Code: apperrors.ErrCodeStorageError, Message: "删除图片失败", Err: err}
	}
	return nil
}

// URL 图片对外地址,ref为空返回空字符串
func (s *LocalStore) URL(kind Kind, ref string) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.publicURL, ImagesDir, kind, ref)
}

func (s *LocalStore) dir(kind Kind) string {
	return filepath.Join(s.baseDir, ImagesDir, string(kind))
}

// validRef 只允许单级文件名,防止路径穿越
func validRef(ref string) bool {
	return ref != "." && ref != ".." && filepath.Base(ref) == ref && !strings.ContainsAny(ref, `/\`)
}
