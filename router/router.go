package router

import (
	"time"

	"integrity/api"
	"integrity/config"
	_ "integrity/docs"
	"integrity/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 后台管理 API（登录 + 受保护的写操作）
	authHandler := api.NewAuthHandler(cfg)
	predictHandler := api.NewPredictHandler(cfg)
	importHandler := api.NewImportHandler()
	notificationHandler := api.NewNotificationHandler()

	admin := r.Group("/admin")
	{
		admin.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

		// 需要 JWT 认证的后台接口
		adminAuth := admin.Group("")
		adminAuth.Use(middleware.JWTAuth())
		{
			adminAuth.GET("/profile", authHandler.GetProfile)

			// 模型训练
			adminAuth.POST("/ml/train", predictHandler.Train)

			// 数据导入
			adminAuth.POST("/import/objects", importHandler.ImportObjects)
			adminAuth.POST("/import/diagnostics", importHandler.ImportDiagnostics)
			adminAuth.GET("/import/logs", importHandler.GetImportLogs)

			// 通知管理
			adminAuth.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			adminAuth.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			adminAuth.DELETE("/notifications/:id", notificationHandler.Delete)
		}
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组（仪表盘前端的只读接口 + 预测）
	v1 := r.Group("/api/v1")
	{
		assetHandler := api.NewAssetHandler()
		v1.GET("/pipelines", assetHandler.ListPipelines)
		v1.GET("/objects", assetHandler.ListAssets)
		v1.GET("/objects/:id", assetHandler.GetAsset)
		v1.GET("/map-data", assetHandler.GetMapData)

		inspectionHandler := api.NewInspectionHandler()
		v1.GET("/diagnostics", inspectionHandler.List)

		dashboardHandler := api.NewDashboardHandler()
		v1.GET("/dashboard", dashboardHandler.Stats)

		v1.POST("/ml/predict", predictHandler.Predict)

		forecastHandler := api.NewForecastHandler()
		forecast := v1.Group("/forecast")
		{
			forecast.GET("/objects/:id", forecastHandler.ObjectForecast)
			forecast.GET("/pipelines/:id", forecastHandler.PipelineForecast)
			forecast.GET("/top-risks", forecastHandler.TopRisks)
		}

		reportHandler := api.NewReportHandler()
		v1.GET("/report", reportHandler.HTMLReport)
		v1.GET("/report/excel", reportHandler.ExcelReport)

		v1.GET("/notifications", notificationHandler.List)
		v1.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
