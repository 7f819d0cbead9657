package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// pathID 解析路径中的ID参数,失败时已写入响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param(name))
		return 0, false
	}
	return uint(id), true
}

// formUpload 读取multipart文件字段,未上传时返回nil
// 调用方必须执行返回的close
func formUpload(c *gin.Context, field string) (*storage.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperrors.New(apperrors.ErrCodeBindError, "读取上传文件失败")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperrors.Wrap(err, "打开上传文件失败")
	}
	return &storage.Upload{Filename: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}
