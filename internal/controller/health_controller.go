package controller

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"question_extractor/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB            *gorm.DB
	Redis         *redis.Client
	QuestionsFile string
}

// NewHealthController db 和 rdb 未启用时为 nil
func NewHealthController(db *gorm.DB, rdb *redis.Client, questionsFile string) *HealthController {
	return &HealthController{DB: db, Redis: rdb, QuestionsFile: questionsFile}
}

// @Summary 健康检查
// @Description 检查题库目录、数据库和 Redis 状态
// @Tags 系统
// @Produce json
// @Success 200 {object} object
// @Failure 503 {object} object
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{}
	healthy := true

	// 题库目录必须存在
	if _, err := os.Stat(filepath.Dir(c.QuestionsFile)); err != nil {
		components["store"] = "down"
		healthy = false
	} else {
		components["store"] = "up"
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			components["database"] = "down"
			healthy = false
		} else {
			components["database"] = "up"
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		} else {
			components["redis"] = "up"
		}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "components": components})
		return
	}
	util.Success(ctx, gin.H{"status": "ok", "components": components})
}
