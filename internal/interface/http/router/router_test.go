package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appaddress "github.com/xiebiao/bookshop/internal/application/address"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appcombo "github.com/xiebiao/bookshop/internal/application/combo"
	appfavorite "github.com/xiebiao/bookshop/internal/application/favorite"
	appgenre "github.com/xiebiao/bookshop/internal/application/genre"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appreport "github.com/xiebiao/bookshop/internal/application/report"
	appreview "github.com/xiebiao/bookshop/internal/application/review"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	appvoucher "github.com/xiebiao/bookshop/internal/application/voucher"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/notify"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
)

const (
	adminEmail    = "admin@bookshop.test"
	adminPassword = "Admin12345"
)

// fakeSessions 内存版会话存储,同时充当Token黑名单
type fakeSessions struct {
	mu        sync.Mutex
	blacklist map[string]struct{}
}

func (f *fakeSessions) SaveSession(context.Context, redis.Session, time.Duration) error { return nil }

func (f *fakeSessions) DeleteSession(context.Context, uint) error { return nil }

func (f *fakeSessions) AddToBlacklist(_ context.Context, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[token] = struct{}{}
	return nil
}

func (f *fakeSessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blacklist[token]
	return ok, nil
}

// fakeResetTokens 内存版找回密码凭证
type fakeResetTokens struct {
	mu     sync.Mutex
	tokens map[string]uint
	last   string
}

func (f *fakeResetTokens) SaveResetToken(_ context.Context, token string, userID uint, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
	f.last = token
	return nil
}

func (f *fakeResetTokens) ConsumeResetToken(_ context.Context, token string) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[token]
	if !ok {
		return 0, apperrors.ErrResetTokenInvalid
	}
	delete(f.tokens, token)
	return id, nil
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
	resets *fakeResetTokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Storage:  config.StorageConfig{BaseDir: t.TempDir(), PublicBaseURL: "http://localhost:8080", MaxUploadSize: 1 << 20},
		Order:    config.OrderConfig{VerifyUnitPrice: true},
		Admin:    config.AdminConfig{Email: adminEmail, Password: adminPassword, Name: "管理员"},
		Password: config.PasswordConfig{ResetTokenExpire: time.Minute, ResetURL: "http://localhost:8080/reset-password"},
	}

	store := memory.NewStore()
	images, err := storage.NewLocalStore(cfg, logger)
	require.NoError(t, err)
	sessions := &fakeSessions{blacklist: map[string]struct{}{}}
	resets := &fakeResetTokens{tokens: map[string]uint{}}
	jwtManager := jwt.NewManager("router-test-secret", time.Hour, 24*time.Hour)
	notifier := notify.NewNotifier(notify.NewLogSender(logger), notify.NewLogPublisher(logger), logger)

	userService := user.NewServiceWithCost(store.Users(), bcrypt.MinCost)
	bookService := book.NewService(store.Books(), store.Genres())
	comboService := combo.NewService(store.Combos(), store.Books())

	require.NoError(t, appuser.NewBootstrapAdminUseCase(userService, cfg, logger).Execute(context.Background()))

	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, notifier),
			appuser.NewLoginUseCase(userService, jwtManager, sessions, logger),
			appuser.NewLogoutUseCase(jwtManager, sessions),
			appuser.NewRefreshUseCase(store.Users(), jwtManager),
			appuser.NewProfileUseCase(store.Users()),
			appuser.NewPasswordUseCase(userService, store.Users(), resets, sessions, notifier, cfg, logger),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(bookService, images, logger),
			appbook.NewUpdateBookUseCase(bookService, images, logger),
			appbook.NewDeleteBookUseCase(bookService, images, logger),
			appbook.NewQueryBooksUseCase(bookService, store.Genres(), store.Reviews(), images),
		),
		Order: handler.NewOrderHandler(
			apporder.NewPlaceOrderUseCase(store, notifier, cfg, logger),
			apporder.NewQueryOrdersUseCase(store.Orders(), store.Users(), store.Addresses(), store.Books(), store.Combos()),
			apporder.NewUpdateStatusUseCase(store, logger),
			apporder.NewDeleteOrderUseCase(store.Orders(), logger),
		),
		Catalog: handler.NewCatalogHandler(
			appgenre.NewGenreUseCase(store.Genres(), logger),
			appcombo.NewComboUseCase(comboService, store.Books(), images, logger),
		),
		Account: handler.NewAccountHandler(
			appvoucher.NewVoucherUseCase(store.Vouchers(), logger),
			appaddress.NewAddressUseCase(store.Addresses()),
			appreview.NewReviewUseCase(review.NewService(store.Reviews(), store.Books()), store.Users()),
			appfavorite.NewFavoriteUseCase(favorite.NewService(store.Favorites(), store.Books()), store.Books(), images),
		),
		Report: handler.NewReportHandler(
			appreport.NewReportUseCase(store.Reports(), store.Users(), store.Books(), store.Combos(), store.Orders(), images),
		),
	}

	engine, err := New(cfg, logger, images, middleware.NewAuthMiddleware(jwtManager, sessions), h)
	require.NoError(t, err)
	return &testServer{engine: engine, store: store, resets: resets}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func (s *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "读者甲",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	return s.login(t, email, "password123")
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestAccessLevels(t *testing.T) {
	s := newTestServer(t)
	customer := s.registerAndLogin(t, "reader@example.com")
	admin := s.login(t, adminEmail, adminPassword)

	t.Run("公开接口无需登录", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/books", "", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, env.Success)
	})

	t.Run("未登录访问个人订单", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/orders/mine", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.False(t, env.Success)
	})

	t.Run("Token格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("普通用户不能维护分类", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/v1/genres", customer, gin.H{"name": "科幻"})
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("管理员可以维护分类", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/v1/genres", admin, gin.H{"name": "科幻"})
		require.Equal(t, http.StatusOK, code, env.Message)

		code, env = s.do(t, http.MethodGet, "/api/v1/genres", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), "科幻")
	})

	t.Run("营收报表仅管理员可见", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/v1/reports/revenue/monthly", customer, nil)
		assert.Equal(t, http.StatusForbidden, code)

		code, _ = s.do(t, http.MethodGet, "/api/v1/reports/revenue/monthly", admin, nil)
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "leaver@example.com")

	code, env := s.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "leaver@example.com")

	code, _ = s.do(t, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	customer := s.registerAndLogin(t, "buyer@example.com")
	admin := s.login(t, adminEmail, adminPassword)

	b := book.NewBook("三体", "刘慈欣", 0, decimal.RequireFromString("10.00"), 5, time.Date(2008, 1, 1, 0, 0, 0, 0, time.Local), "")
	require.NoError(t, s.store.Books().Create(context.Background(), b))

	place := gin.H{
		"recipient_name": "张三",
		"address":        "北京市海淀区1号",
		"phone":          "13800000000",
		"payment_method": "COD",
		"items":          []gin.H{{"book_id": b.ID, "quantity": 2, "unit_price": "10.00"}},
	}

	code, env := s.do(t, http.MethodPost, "/api/v1/orders", customer, place)
	require.Equal(t, http.StatusOK, code, env.Message)
	var placed struct {
		OrderID uint            `json:"order_id"`
		Total   decimal.Decimal `json:"total"`
		Status  string          `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.True(t, placed.Total.Equal(decimal.NewFromInt(20)), "total=%s", placed.Total)
	assert.Equal(t, "pending", placed.Status)
	orderPath := fmt.Sprintf("/api/v1/orders/%d", placed.OrderID)
	statusPath := orderPath + "/status"

	stocked, err := s.store.Books().FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stocked.Stock)

	t.Run("空订单被拒绝", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/v1/orders", customer, gin.H{"payment_method": "COD", "items": []gin.H{}})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("个人订单列表", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/orders/mine", customer, nil)
		require.Equal(t, http.StatusOK, code)
		var orders []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &orders))
		assert.Len(t, orders, 1)
	})

	t.Run("未知状态被拒绝", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, statusPath, admin, gin.H{"status": "lost"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("普通用户不能改状态", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, statusPath, customer, gin.H{"status": "confirmed"})
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("管理员确认订单", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, statusPath, admin, gin.H{"status": "confirmed"})
		require.Equal(t, http.StatusOK, code, env.Message)

		code, env = s.do(t, http.MethodGet, orderPath, customer, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), `"status":"confirmed"`)
	})

	t.Run("他人订单不可见", func(t *testing.T) {
		other := s.registerAndLogin(t, "other@example.com")
		code, _ := s.do(t, http.MethodGet, orderPath, other, nil)
		assert.NotEqual(t, http.StatusOK, code)
	})
}

func TestPasswordFlows(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "forgetful@example.com")

	t.Run("修改密码需要登录", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, "/api/v1/users/me/password", "", gin.H{"old_password": "password123", "new_password": "changed123"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("原密码错误", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, "/api/v1/users/me/password", token, gin.H{"old_password": "wrong-pass1", "new_password": "changed123"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("修改密码", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, "/api/v1/users/me/password", token, gin.H{"old_password": "password123", "new_password": "changed123"})
		require.Equal(t, http.StatusOK, code, env.Message)
		s.login(t, "forgetful@example.com", "changed123")
	})

	t.Run("未注册邮箱同样返回成功", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/v1/users/password/forgot", "", gin.H{"email": "ghost@example.com"})
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, s.resets.last)
	})

	t.Run("找回并重置密码", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/v1/users/password/forgot", "", gin.H{"email": "forgetful@example.com"})
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, s.resets.last)

		code, env := s.do(t, http.MethodPost, "/api/v1/users/password/reset", "", gin.H{"token": s.resets.last, "new_password": "recovered9"})
		require.Equal(t, http.StatusOK, code, env.Message)
		s.login(t, "forgetful@example.com", "recovered9")

		code, _ = s.do(t, http.MethodPost, "/api/v1/users/password/reset", "", gin.H{"token": s.resets.last, "new_password": "recovered9"})
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestAddressAndGenreRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := s.registerAndLogin(t, "owner@example.com")
	stranger := s.registerAndLogin(t, "stranger@example.com")
	admin := s.login(t, adminEmail, adminPassword)

	code, env := s.do(t, http.MethodPost, "/api/v1/addresses", owner, gin.H{"recipient_name": "张三", "address": "北京市海淀区1号", "phone": "13800000000"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	addrPath := fmt.Sprintf("/api/v1/addresses/%d", created.ID)
	update := gin.H{"recipient_name": "张三", "address": "北京市朝阳区2号", "phone": "13800000000"}

	code, _ = s.do(t, http.MethodPut, addrPath, stranger, update)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.do(t, http.MethodPut, addrPath, owner, update)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "朝阳区")

	code, _ = s.do(t, http.MethodDelete, addrPath, stranger, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodDelete, addrPath, owner, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, addrPath, owner, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/genres", admin, gin.H{"name": "科幻"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var g struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &g))

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/genres/%d", g.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "科幻")

	code, env = s.do(t, http.MethodGet, "/api/v1/genres/search?keyword="+url.QueryEscape("科"), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "科幻")

	code, _ = s.do(t, http.MethodGet, "/api/v1/genres/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
