package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

func newTestStore(t *testing.T, maxSize int64) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{
		BaseDir:       dir,
		PublicBaseURL: "http://localhost:8080/",
		MaxUploadSize: maxSize,
	}}
	s, err := NewLocalStore(cfg, zap.NewNop())
	require.NoError(t, err)
	return s, dir
}

func TestStoreAndDelete(t *testing.T) {
	s, dir := newTestStore(t, 1024)
	ctx := context.Background()

	ref, err := s.Store(ctx, KindBook, strings.NewReader("fake-png"), "cover.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"), "扩展名应转为小写: %s", ref)

	path := filepath.Join(dir, "images", "books", ref)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(content))

	assert.Equal(t, "http://localhost:8080/images/books/"+ref, s.URL(KindBook, ref))

	require.NoError(t, s.Delete(ctx, KindBook, ref))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "文件应已删除")

	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, KindBook, ref))
}

func TestStoreRejects(t *testing.T) {
	s, dir := newTestStore(t, 8)
	ctx := context.Background()

	t.Run("不支持的扩展名", func(t *testing.T) {
		_, err := s.Store(ctx, KindBook, strings.NewReader("x"), "cover.exe")
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("超过大小限制", func(t *testing.T) {
		_, err := s.Store(ctx, KindCombo, bytes.NewReader(make([]byte, 9)), "combo.jpg")
		assert.ErrorIs(t, err, ErrImageTooLarge)

		entries, err := os.ReadDir(filepath.Join(dir, "images", "combos"))
		require.NoError(t, err)
		assert.Empty(t, entries, "失败后不应残留文件")
	})

	t.Run("刚好等于上限", func(t *testing.T) {
		_, err := s.Store(ctx, KindCombo, bytes.NewReader(make([]byte, 8)), "combo.jpg")
		assert.NoError(t, err)
	})
}

func TestDeleteRejectsTraversal(t *testing.T) {
	s, _ := newTestStore(t, 0)
	for _, ref := range []string{"../secret.jpg", "..", "a/b.jpg", "/etc/passwd"} {
		if err := s.Delete(context.Background(), KindBook, ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("%q: 期望%v，实际%v", ref, ErrInvalidRef, err)
		}
	}
}

func TestURLEmptyRef(t *testing.T) {
	s, _ := newTestStore(t, 0)
	assert.Equal(t, "", s.URL(KindBook, ""))
}
