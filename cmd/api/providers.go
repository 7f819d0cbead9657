package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/notify"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// App 启动所需的全部组件
type App struct {
	Engine    *gin.Engine
	Bootstrap *appuser.BootstrapAdminUseCase
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideDB 创建数据库连接,cleanup时关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := mysql.Close(db); err != nil {
			logger.Warn("关闭数据库连接失败", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// provideRedis 创建Redis客户端,cleanup时关闭
func provideRedis(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// providePublisher mq.enabled=false时事件只写日志
func providePublisher(cfg *config.Config, logger *zap.Logger) (notify.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return notify.NewLogPublisher(logger), func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return publisher, cleanup, nil
}

// provideMailSender 启用MQ时邮件投递给邮件服务,否则只写日志
// 发送失败不影响业务流程
func provideMailSender(cfg *config.Config, publisher notify.Publisher, logger *zap.Logger) notify.Sender {
	var sender notify.Sender = notify.NewLogSender(logger)
	if cfg.MQ.Enabled {
		sender = notify.NewMQSender(publisher)
	}
	return notify.NewBestEffort(sender, logger)
}
