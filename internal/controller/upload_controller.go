package controller

import (
	"errors"

	"question_extractor/internal/service"
	"question_extractor/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	QuestionService *service.QuestionService
}

func NewUploadController(questionService *service.QuestionService) *UploadController {
	return &UploadController{QuestionService: questionService}
}

// ListUploads godoc
// @Summary 上传历史
// @Tags uploads
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} object{items=[]model.Upload,total=int,page=int,limit=int}
// @Failure 503 {object} util.ErrorResponse "upload history requires a database"
// @Router /uploads [get]
func (c *UploadController) ListUploads(ctx *gin.Context) {
	page := util.ParseIntDefault(ctx.Query("page"), 1)
	limit := util.ParseIntDefault(ctx.Query("limit"), 20)

	uploads, total, err := c.QuestionService.ListUploads(page, limit)
	if err != nil {
		if errors.Is(err, util.ErrHistoryDisabled) {
			util.ServiceUnavailable(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items": uploads,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetProgress godoc
// @Summary 提取进度
// @Tags uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} model.UploadProgress
// @Failure 404 {object} util.ErrorResponse
// @Router /uploads/{id}/progress [get]
func (c *UploadController) GetProgress(ctx *gin.Context) {
	progress, err := c.QuestionService.GetProgress(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrUploadNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
