package model

import "time"

type UploadStatus string

const (
	UploadProcessing UploadStatus = "processing"
	UploadSucceeded  UploadStatus = "succeeded"
	UploadFailed     UploadStatus = "failed"
)

// Upload 一次 PDF 上传的历史记录
// swagger:model Upload
type Upload struct {
	BaseModel
	UploadID      string       `gorm:"size:36;uniqueIndex;not null" json:"upload_id"`
	Filename      string       `gorm:"size:255;not null" json:"filename"`
	StoredPath    string       `gorm:"size:512" json:"stored_path"`
	ExamPrefix    string       `gorm:"size:128;index" json:"exam_prefix"`
	Status        UploadStatus `gorm:"size:20;not null;default:processing" json:"status"`
	Pages         int          `gorm:"default:0" json:"pages"`
	QuestionCount int          `gorm:"default:0" json:"question_count"`
	ImageCount    int          `gorm:"default:0" json:"image_count"`
	OCRPages      int          `gorm:"default:0" json:"ocr_pages"`
	DurationMs    int64        `gorm:"default:0" json:"duration_ms"`
	Error         string       `gorm:"type:text" json:"error,omitempty"`
}

func (Upload) TableName() string {
	return "uploads"
}

// UploadProgress 提取过程中的阶段性进度
// swagger:model UploadProgress
type UploadProgress struct {
	UploadID   string    `json:"upload_id"`
	Stage      string    `json:"stage"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Questions  int       `json:"questions"`
	UpdatedAt  time.Time `json:"updated_at"`
}
