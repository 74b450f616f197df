package app

import (
	"question_extractor/docs"
	"question_extractor/internal/config"
	"question_extractor/internal/service"
	"question_extractor/pkg/monitoring"
	"question_extractor/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 题库
	router.GET("/", c.question.Index)
	router.POST("/upload", security.MaxBodySize(cfg.Server.MaxUploadMB<<20), c.question.Upload)
	router.GET("/questions", c.question.ListQuestions)

	// 2. 上传历史与进度
	uploads := router.Group("/uploads")
	{
		uploads.GET("", c.upload.ListUploads)
		uploads.GET("/:id/progress", c.upload.GetProgress)
	}

	// 3. 本地存储的题目图片
	router.Static("/"+service.StaticURLPrefix, cfg.Storage.StaticPath)
}
