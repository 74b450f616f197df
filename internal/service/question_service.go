package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"question_extractor/internal/config"
	"question_extractor/internal/extractor"
	"question_extractor/internal/model"
	"question_extractor/internal/repository"
	"question_extractor/internal/util"
	"question_extractor/pkg/logger"
	"question_extractor/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StageReceived 文件已保存、提取尚未开始
const StageReceived = "received"

// PDFExtractor 由 extractor.Extractor 实现，测试中可替换
type PDFExtractor interface {
	Extract(ctx context.Context, path, prefix string, progress extractor.ProgressFunc) (*extractor.Result, error)
}

// UploadHistory 由 repository.UploadRepository 实现
type UploadHistory interface {
	Create(upload *model.Upload) error
	Update(upload *model.Upload) error
	FindByUploadID(uploadID string) (*model.Upload, error)
	List(page, limit int) ([]model.Upload, int64, error)
}

type QuestionService struct {
	Repo       *repository.QuestionRepository
	UploadRepo UploadHistory
	Extractor  PDFExtractor
	Progress   *ProgressService
	UploadDir  string
}

// UploadResult 一次提取的汇总
type UploadResult struct {
	UploadID   string
	Filename   string
	StoredPath string
	Count      int
	Total      int
	Pages      int
	Images     int
	OCRPages   int
}

// NewQuestionService uploadRepo 为 nil 时不记录上传历史
func NewQuestionService(repo *repository.QuestionRepository, uploadRepo *repository.UploadRepository, ex PDFExtractor, progress *ProgressService, cfg *config.Config) *QuestionService {
	s := &QuestionService{
		Repo:      repo,
		Extractor: ex,
		Progress:  progress,
		UploadDir: cfg.Storage.UploadPath,
	}
	if uploadRepo != nil {
		s.UploadRepo = uploadRepo
	}
	return s
}

func (s *QuestionService) ListQuestions() ([]model.Question, error) {
	return s.Repo.FindAll()
}

// NormalizeUploadID 校验客户端提供的上传 ID，为空时生成新的 ID
func NormalizeUploadID(uploadID string) (string, error) {
	if uploadID == "" {
		return model.GenerateUUID(), nil
	}
	id, err := uuid.Parse(uploadID)
	if err != nil {
		return "", util.ErrInvalidUploadID
	}
	return id.String(), nil
}

// ProcessUpload 保存上传的 PDF，提取题目并追加到题库
// uploadID 可由客户端提前生成，以便在提取过程中查询进度
func (s *QuestionService) ProcessUpload(ctx context.Context, file *multipart.FileHeader, uploadID string) (*UploadResult, error) {
	if file == nil || file.Filename == "" || file.Size == 0 {
		return nil, util.ErrNoFileUploaded
	}
	uploadID, err := NormalizeUploadID(uploadID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	if _, err := util.ValidateMimeType(src, []string{util.MimePDF}); err != nil {
		return nil, util.ErrNotPDF
	}
	// 重置读取指针
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	filename := util.SanitizeFilename(file.Filename)
	dst := filepath.Join(s.UploadDir, filename)
	if err := saveFile(src, dst); err != nil {
		return nil, fmt.Errorf("save upload %s: %w", filename, err)
	}

	return s.ExtractFile(ctx, dst, filename, uploadID)
}

// ExtractFile 提取已在磁盘上的 PDF，filename 决定题目 id 前缀，uploadID 为空时自动生成
func (s *QuestionService) ExtractFile(ctx context.Context, path, filename, uploadID string) (*UploadResult, error) {
	uploadID, err := NormalizeUploadID(uploadID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := &UploadResult{
		UploadID:   uploadID,
		Filename:   filename,
		StoredPath: path,
	}
	prefix := extractor.ExamPrefix(filename)

	record := &model.Upload{
		UploadID:   res.UploadID,
		Filename:   filename,
		StoredPath: path,
		ExamPrefix: prefix,
		Status:     model.UploadProcessing,
	}
	s.createHistory(record)
	if s.Progress != nil {
		s.Progress.Update(ctx, model.UploadProgress{UploadID: uploadID, Stage: StageReceived})
	}

	log := logger.Log.With(zap.String("upload_id", res.UploadID), zap.String("file", filename))
	log.Info("Extraction started", zap.String("prefix", prefix))

	extracted, err := s.Extractor.Extract(ctx, path, prefix, s.progressFunc(ctx, res.UploadID))
	if err == nil {
		res.Count = len(extracted.Questions)
		res.Pages = extracted.Pages
		res.Images = extracted.Images
		res.OCRPages = extracted.OCRPages
		res.Total, err = s.Repo.Append(extracted.Questions)
	}

	elapsed := time.Since(start)
	record.Pages = res.Pages
	record.QuestionCount = res.Count
	record.ImageCount = res.Images
	record.OCRPages = res.OCRPages
	record.DurationMs = elapsed.Milliseconds()

	if err != nil {
		log.Error("Extraction failed", zap.Error(err))
		record.Status = model.UploadFailed
		record.Error = err.Error()
		s.updateHistory(record)
		monitoring.ObserveUpload(string(model.UploadFailed), 0, 0, elapsed)
		return nil, err
	}

	record.Status = model.UploadSucceeded
	s.updateHistory(record)
	monitoring.ObserveUpload(string(model.UploadSucceeded), res.Count, res.OCRPages, elapsed)

	log.Info("Extraction finished",
		zap.Int("questions", res.Count),
		zap.Int("images", res.Images),
		zap.Int("ocr_pages", res.OCRPages),
		zap.Int("total", res.Total),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (s *QuestionService) ListUploads(page, limit int) ([]model.Upload, int64, error) {
	if s.UploadRepo == nil {
		return nil, 0, util.ErrHistoryDisabled
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.UploadRepo.List(page, limit)
}

// GetProgress 优先读取实时进度，进度过期后回退到上传历史中的最终状态
func (s *QuestionService) GetProgress(ctx context.Context, uploadID string) (*model.UploadProgress, error) {
	progress, err := s.Progress.Get(ctx, uploadID)
	if err == nil || !errors.Is(err, util.ErrUploadNotFound) || s.UploadRepo == nil {
		return progress, err
	}

	record, err := s.UploadRepo.FindByUploadID(uploadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUploadNotFound
		}
		return nil, err
	}

	stage := string(record.Status)
	if record.Status == model.UploadSucceeded {
		stage = extractor.StageComplete
	}
	return &model.UploadProgress{
		UploadID:   record.UploadID,
		Stage:      stage,
		TotalPages: record.Pages,
		Questions:  record.QuestionCount,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

func (s *QuestionService) progressFunc(ctx context.Context, uploadID string) extractor.ProgressFunc {
	if s.Progress == nil {
		return nil
	}
	return func(stage string, page, totalPages, questions int) {
		s.Progress.Update(ctx, model.UploadProgress{
			UploadID:   uploadID,
			Stage:      stage,
			Page:       page,
			TotalPages: totalPages,
			Questions:  questions,
		})
	}
}

// 历史记录只是辅助信息，写入失败不影响提取结果
func (s *QuestionService) createHistory(record *model.Upload) {
	if s.UploadRepo == nil {
		return
	}
	if err := s.UploadRepo.Create(record); err != nil {
		logger.Log.Warn("Failed to create upload history", zap.String("upload_id", record.UploadID), zap.Error(err))
	}
}

func (s *QuestionService) updateHistory(record *model.Upload) {
	if s.UploadRepo == nil || record.ID == 0 {
		return
	}
	if err := s.UploadRepo.Update(record); err != nil {
		logger.Log.Warn("Failed to update upload history", zap.String("upload_id", record.UploadID), zap.Error(err))
	}
}

// saveFile 同名文件直接覆盖
func saveFile(src io.Reader, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, src)
	return err
}

// IsClientError 判断错误是否由请求本身导致
func IsClientError(err error) bool {
	return errors.Is(err, util.ErrNoFileUploaded) ||
		errors.Is(err, util.ErrNotPDF) ||
		errors.Is(err, util.ErrInvalidUploadID)
}
