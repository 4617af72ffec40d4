package api

import (
	"net/http"

	"announcements/config"
	"announcements/internal/api/admin"
	"announcements/internal/api/apis"
	"announcements/internal/api/handler"
	"announcements/internal/middleware"
	"announcements/internal/permission"
	"announcements/internal/repository"
	"announcements/internal/service"
	"announcements/pkg/async"
	"announcements/pkg/email"
	"announcements/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Services 路由依赖的服务和数据源
type Services struct {
	Announcements *service.AnnouncementService
	Settings      *service.SettingService
	System        *service.SystemService
	Users         repository.UserRepository
	Permissions   *permission.Manager
}

// NewServices 基于MySQL和Redis组装全部服务
func NewServices(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client, worker *async.Worker) Services {
	// 初始化存储库
	store := repository.NewStore(db)
	spaceRepo := repository.NewSpaceRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	systemRepo := repository.NewSystemRepository(db)
	permissions := permission.NewManager(repository.NewPermissionRepository(db))

	// 初始化邮件服务
	emailService := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)

	// 初始化服务
	settingService := service.NewSettingService(settingRepo, redisClient, logger)
	searchService := service.NewSearchService(redisClient, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, spaceRepo, settingService, emailService, worker, cfg.BaseURL, logger)
	announcementService := service.NewAnnouncementService(store, spaceRepo, userRepo, permissions, notificationService, searchService, settingService, redisClient, logger)
	systemService := service.NewSystemService(systemRepo, redisClient, logger)

	return Services{
		Announcements: announcementService,
		Settings:      settingService,
		System:        systemService,
		Users:         userRepo,
		Permissions:   permissions,
	}
}

// NewEngine 创建Gin引擎并注册全部路由
func NewEngine(cfg *config.Config, logger *logger.Logger, s Services) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// 初始化处理器
	announcementHandler := handler.NewAnnouncementHandler(s.Announcements, logger)
	systemHandler := handler.NewSystemHandler(s.System, logger)
	configHandler := admin.NewConfigHandler(s.Settings, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API版本v1，全部路由都需要认证
	v1 := router.Group("/api/v1")
	v1.Use(middleware.UserAuth(cfg.JWT.Secret, s.Users))
	apis.RegisterRoutes(v1, announcementHandler)

	// 注册模块管理路由
	adminRouter := v1.Group("/admin")
	adminRouter.Use(middleware.AdminAuth(s.Permissions))
	admin.RegisterAdminRoutes(adminRouter, configHandler, systemHandler)

	return router
}
