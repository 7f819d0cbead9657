package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func perform(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccessEnvelope(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Success(c, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body.Data)
}

func TestErrorEnvelopeStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"不存在", apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在"), http.StatusNotFound},
		{"校验失败", apperrors.New(apperrors.ErrCodeVoucherInvalid, "优惠券不可用"), http.StatusBadRequest},
		{"无权限", apperrors.ErrForbidden, http.StatusForbidden},
		{"内部错误", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := perform(t, func(c *gin.Context) {
				Error(c, tt.err)
			})
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
			assert.Nil(t, body.Data)
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	_, body := perform(t, func(c *gin.Context) {
		Error(c, apperrors.Wrap(assert.AnError, "查询订单失败"))
	})
	assert.Equal(t, "查询订单失败", body.Message)
}
