//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改本文件后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链:
// Repository ← Domain Service ← UseCase ← Handler ← Router

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

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
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/notify"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
// 包含：数据库、Redis、图片存储、消息发布和通知
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	storage.NewLocalStore,
	providePublisher,
	provideMailSender,
	notify.NewNotifier,
	wire.Bind(new(apporder.Notifier), new(*notify.Notifier)),
	wire.Bind(new(appuser.WelcomeMailer), new(*notify.Notifier)),
	wire.Bind(new(appuser.PasswordResetMailer), new(*notify.Notifier)),
	wire.Bind(new(appbook.ImageStore), new(*storage.LocalStore)),
	wire.Bind(new(appcombo.ImageStore), new(*storage.LocalStore)),
	wire.Bind(new(appfavorite.ImageURLs), new(*storage.LocalStore)),
	wire.Bind(new(appreport.ImageURLs), new(*storage.LocalStore)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewGenreRepository,
	mysql.NewBookRepository,
	mysql.NewComboRepository,
	mysql.NewVoucherRepository,
	mysql.NewAddressRepository,
	mysql.NewOrderRepository,
	mysql.NewReviewRepository,
	mysql.NewFavoriteRepository,
	mysql.NewReportRepository,
	mysql.NewTxManager,
	wire.Bind(new(order.UnitOfWork), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	combo.NewService,
	review.NewService,
	favorite.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewProfileUseCase,
	appuser.NewPasswordUseCase,
	appuser.NewBootstrapAdminUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewQueryBooksUseCase,
	appgenre.NewGenreUseCase,
	appcombo.NewComboUseCase,
	appvoucher.NewVoucherUseCase,
	appaddress.NewAddressUseCase,
	appreview.NewReviewUseCase,
	appfavorite.NewFavoriteUseCase,
	apporder.NewPlaceOrderUseCase,
	apporder.NewQueryOrdersUseCase,
	apporder.NewUpdateStatusUseCase,
	apporder.NewDeleteOrderUseCase,
	appreport.NewReportUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	redis.NewResetTokenStore,
	wire.Bind(new(appuser.ResetTokens), new(*redis.ResetTokenStore)),
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	handler.NewCatalogHandler,
	handler.NewAccountHandler,
	handler.NewReportHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序释放MQ、Redis和数据库连接
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
