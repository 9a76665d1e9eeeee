package main

import (
	"context"
	"database/sql"
	"fmt"
	"lake-backend/config"
	"lake-backend/internal/api/post"
	"lake-backend/internal/api/social"
	"lake-backend/internal/api/user"
	"lake-backend/internal/common"
	"lake-backend/internal/errors"
	"lake-backend/internal/events"
	"lake-backend/internal/middleware"
	"lake-backend/internal/monitoring"
	"lake-backend/internal/repository/mysql"
	"lake-backend/internal/serializer"
	"lake-backend/internal/service"
	"lake-backend/internal/storage"
	"lake-backend/internal/util"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	if err := config.AppConfig.Validate(); err != nil {
		util.Logger.Fatal("配置无效", zap.Error(err))
	}
	util.Logger.Info("应用程序启动")

	db := openDatabase()
	defer db.Close()

	if err := mysql.EnsureSchema(db); err != nil {
		util.Logger.Fatal("初始化数据表失败", zap.Error(err))
	}

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		util.RegisterValidators(v)
	}

	if config.AppConfig.StorageDriver == "local" {
		ensureUploadsFolder()
	}
	uploader, err := storage.NewUploader(config.AppConfig)
	if err != nil {
		util.Logger.Fatal("初始化存储失败", zap.Error(err))
	}

	publisher := newPublisher()
	defer publisher.Close()

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	postRepo := mysql.NewPostRepository(db)
	commentRepo := mysql.NewCommentRepository(db)
	followRepo := mysql.NewFollowRepository(db)
	notificationRepo := mysql.NewNotificationRepository(db)

	emailService := service.NewEmailService(config.AppConfig)
	notificationService := service.NewNotificationService(notificationRepo, publisher)
	userService := service.NewUserService(userRepo, uploader, emailService)
	postService := service.NewPostService(postRepo, uploader, notificationService)
	commentService := service.NewCommentService(commentRepo, postRepo, notificationService)
	followService := service.NewFollowService(followRepo, userRepo, notificationService)

	views := serializer.New(userRepo, postRepo, commentRepo, followRepo)
	authHandler := user.NewAuthHandler(userService, views)
	profileHandler := user.NewProfileHandler(userService, views)
	postHandler := post.NewPostHandler(postService, views)
	commentHandler := post.NewCommentHandler(commentService, views)
	followHandler := social.NewFollowHandler(followService, views)
	notificationHandler := social.NewNotificationHandler(notificationService, views)

	// 定时校准冗余计数
	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	service.NewCounterReconciler(followRepo, postRepo, commentRepo).
		Start(ctx, config.AppConfig.CounterReconcileInterval)

	analytics := errors.NewErrorAnalytics()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorMonitorMiddleware(analytics))
	r.Use(middleware.RecoveryMiddleware())
	r.Use(monitoring.InstrumentHandler())
	r.Use(cors.New(corsConfig()))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if config.AppConfig.StorageDriver == "local" {
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	authRequired := middleware.AuthMiddleware(userService)
	optionalAuth := middleware.OptionalAuth(userService)

	// 定义 API 路由
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			status := "ok"
			if err := db.Ping(); err != nil {
				status = "database unavailable"
			}
			errors.HandleSuccess(c, gin.H{
				"status": status,
				"errors": analytics.GetStats(),
			}, "")
		})

		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 匿名也可访问，登录后返回点赞与关注状态
		public := api.Group("/")
		public.Use(optionalAuth)
		{
			public.GET("/users", profileHandler.SearchUsers)
			public.GET("/users/:id", profileHandler.GetUser)
			public.GET("/users/:id/posts", postHandler.ListUserPosts)
			public.GET("/users/:id/followers", followHandler.Followers)
			public.GET("/users/:id/following", followHandler.Following)
			public.GET("/posts", postHandler.ListPosts)
			public.GET("/posts/:id", postHandler.GetPost)
			public.GET("/posts/:id/comments", commentHandler.ListComments)
		}

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(authRequired)
		{
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/refresh-token", authHandler.RefreshToken)

			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.POST("/profile/picture", profileHandler.UploadProfilePicture)
			authorized.POST("/profile/cover", profileHandler.UploadCoverPhoto)
			authorized.DELETE("/account", profileHandler.DeleteAccount)

			authorized.POST("/users/:id/follow", followHandler.Follow)
			authorized.DELETE("/users/:id/follow", followHandler.Unfollow)
			authorized.GET("/users/:id/follow/status", followHandler.Status)

			authorized.POST("/posts", postHandler.CreatePost)
			authorized.PUT("/posts/:id", postHandler.UpdatePost)
			authorized.DELETE("/posts/:id", postHandler.DeletePost)
			authorized.GET("/feed", postHandler.Feed)
			authorized.POST("/posts/:id/likes", postHandler.LikePost)
			authorized.DELETE("/posts/:id/likes", postHandler.UnlikePost)

			authorized.POST("/posts/:id/comments", commentHandler.CreateComment)
			authorized.DELETE("/comments/:id", commentHandler.DeleteComment)
			authorized.POST("/comments/:id/likes", commentHandler.LikeComment)
			authorized.DELETE("/comments/:id/likes", commentHandler.UnlikeComment)

			authorized.GET("/notifications", notificationHandler.List)
			authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			authorized.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)
		}
	}

	if config.AppConfig.Debug {
		for _, route := range r.Routes() {
			util.Logger.Debug("路由", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}

	srv := &http.Server{
		Addr:              config.AppConfig.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

func openDatabase() *sql.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}

	// 数据库容器可能晚于应用启动
	err = common.WithRetry(db.Ping, 5, 2*time.Second, common.IsRetryable)
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db
}

func newPublisher() events.Publisher {
	if config.AppConfig.NATSURL == "" {
		util.Logger.Info("未配置 NATS，通知事件不推送")
		return events.NopPublisher{}
	}
	publisher, err := events.NewNATSPublisher(config.AppConfig.NATSURL)
	if err != nil {
		// 推送不可用时通知仍会写入数据库
		util.Logger.Error("连接 NATS 失败", zap.Error(err))
		return events.NopPublisher{}
	}
	return publisher
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.HeaderRequestID,
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		middleware.HeaderRequestID,
	}
	return corsConfig
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
