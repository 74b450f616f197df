package controller

import (
	"errors"
	"fmt"
	"net/http"

	"question_extractor/internal/service"
	"question_extractor/internal/util"
	"question_extractor/web"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// Index godoc
// @Summary 首页
// @Description 返回内嵌的上传页面
// @Tags questions
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (c *QuestionController) Index(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

// Upload godoc
// @Summary 上传试卷 PDF
// @Description 提取 PDF 中的题目并追加到题库
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Exam PDF"
// @Param upload_id formData string false "Client generated UUID, used to poll /uploads/{id}/progress during extraction"
// @Param X-Upload-ID header string false "Same as upload_id"
// @Success 200 {object} util.UploadResponse
// @Failure 400 {object} util.ErrorResponse "No file uploaded / Only PDF files are accepted / upload_id must be a UUID"
// @Failure 413 {object} util.ErrorResponse "File too large"
// @Failure 500 {object} util.ErrorResponse
// @Router /upload [post]
func (c *QuestionController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile(util.UploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		util.BadRequest(ctx, util.ErrNoFileUploaded.Error())
		return
	}

	uploadID := ctx.GetHeader(util.UploadIDHeader)
	if uploadID == "" {
		uploadID = ctx.PostForm(util.UploadIDFormField)
	}

	res, err := c.QuestionService.ProcessUpload(ctx.Request.Context(), file, uploadID)
	if err != nil {
		if service.IsClientError(err) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.UploadResponse{
		Message:  fmt.Sprintf("Extracted %d questions from %s", res.Count, res.Filename),
		Count:    res.Count,
		UploadID: res.UploadID,
	})
}

// ListQuestions godoc
// @Summary 题库列表
// @Description 返回题库中的全部题目
// @Tags questions
// @Produce json
// @Success 200 {array} model.Question
// @Failure 500 {object} util.ErrorResponse
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.QuestionService.ListQuestions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
