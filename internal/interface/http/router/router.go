package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/validator"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User    *handler.UserHandler
	Book    *handler.BookHandler
	Order   *handler.OrderHandler
	Catalog *handler.CatalogHandler
	Account *handler.AccountHandler
	Report  *handler.ReportHandler
}

// New 创建Gin引擎并注册全部路由
//
// 权限分三级:
//   - 公开: 图书、分类、套装、评论浏览和公开报表
//   - 登录: 下单、个人订单、地址、收藏、评论
//   - 管理员: 上架图书、维护目录、优惠券、订单状态和营收报表
func New(
	cfg *config.Config,
	logger *zap.Logger,
	images *storage.LocalStore,
	auth *middleware.AuthMiddleware,
	h Handlers,
) (*gin.Engine, error) {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境不暴露接口文档
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static("/"+storage.ImagesDir, images.Root())

	v1 := r.Group("/api/v1")
	registerPublic(v1, h)

	authorized := v1.Group("", auth.RequireAuth())
	registerAuthorized(authorized, h)

	admin := v1.Group("", auth.RequireAuth(), middleware.RequireAdmin())
	registerAdmin(admin, h)

	return r, nil
}

func registerPublic(g *gin.RouterGroup, h Handlers) {
	users := g.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/password/forgot", h.User.ForgotPassword)
		users.POST("/password/reset", h.User.ResetPassword)
	}

	books := g.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/search", h.Book.SearchBooks)
		books.GET("/:id", h.Book.GetBook)
		books.GET("/:id/reviews", h.Account.ListReviews)
	}

	genres := g.Group("/genres")
	{
		genres.GET("", h.Catalog.ListGenres)
		genres.GET("/search", h.Catalog.SearchGenres)
		genres.GET("/:id", h.Catalog.GetGenre)
		genres.GET("/:id/books", h.Book.ListByGenre)
	}

	combos := g.Group("/combos")
	{
		combos.GET("", h.Catalog.ListCombos)
		combos.GET("/:id", h.Catalog.GetCombo)
	}

	g.GET("/reviews/:id", h.Account.GetReview)

	reports := g.Group("/reports")
	{
		reports.GET("/best-sellers", h.Report.BestSellers)
		reports.GET("/latest", h.Report.Latest)
		reports.GET("/top-rated", h.Report.TopRated)
	}
}

func registerAuthorized(g *gin.RouterGroup, h Handlers) {
	g.POST("/users/logout", h.User.Logout)
	g.GET("/users/me", h.User.Profile)
	g.PUT("/users/me/password", h.User.ChangePassword)

	g.GET("/vouchers/:code", h.Account.GetVoucher)

	g.GET("/addresses/mine", h.Account.ListMyAddresses)
	g.POST("/addresses", h.Account.CreateAddress)
	g.PUT("/addresses/:id", h.Account.UpdateAddress)
	g.DELETE("/addresses/:id", h.Account.DeleteAddress)

	g.POST("/books/:id/reviews", h.Account.CreateReview)
	g.PUT("/reviews/:id", h.Account.UpdateReview)
	g.DELETE("/reviews/:id", h.Account.DeleteReview)

	favorites := g.Group("/favorites")
	{
		favorites.GET("", h.Account.ListFavorites)
		favorites.POST("", h.Account.AddFavorite)
		favorites.DELETE("/:id", h.Account.RemoveFavorite)
		favorites.DELETE("/books/:id", h.Account.RemoveFavoriteByBook)
	}

	orders := g.Group("/orders")
	{
		orders.POST("", h.Order.PlaceOrder)
		orders.GET("/mine", h.Order.ListMyOrders)
		orders.GET("/:id", h.Order.GetOrder)
	}
}

func registerAdmin(g *gin.RouterGroup, h Handlers) {
	books := g.Group("/books")
	{
		books.POST("", h.Book.PublishBook)
		books.PUT("/:id", h.Book.UpdateBook)
		books.DELETE("/:id", h.Book.DeleteBook)
	}

	genres := g.Group("/genres")
	{
		genres.POST("", h.Catalog.CreateGenre)
		genres.PUT("/:id", h.Catalog.RenameGenre)
		genres.DELETE("/:id", h.Catalog.DeleteGenre)
	}

	combos := g.Group("/combos")
	{
		combos.POST("", h.Catalog.CreateCombo)
		combos.PUT("/:id", h.Catalog.UpdateCombo)
		combos.DELETE("/:id", h.Catalog.DeleteCombo)
	}

	vouchers := g.Group("/vouchers")
	{
		vouchers.GET("", h.Account.ListVouchers)
		vouchers.POST("", h.Account.CreateVoucher)
		vouchers.DELETE("/:id", h.Account.DeleteVoucher)
	}

	g.GET("/addresses", h.Account.ListAddresses)

	orders := g.Group("/orders")
	{
		orders.GET("", h.Order.ListOrders)
		orders.PUT("/:id/status", h.Order.UpdateStatus)
		orders.DELETE("/:id", h.Order.DeleteOrder)
	}
	g.GET("/customers/:id/orders", h.Order.ListCustomerOrders)

	reports := g.Group("/reports")
	{
		reports.GET("/revenue/:period", h.Report.Revenue)
		reports.GET("/dashboard", h.Report.Dashboard)
	}
}
