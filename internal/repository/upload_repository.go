package repository

import (
	"question_extractor/internal/model"

	"gorm.io/gorm"
)

type UploadRepository struct {
	DB *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{DB: db}
}

func (r *UploadRepository) Create(upload *model.Upload) error {
	return r.DB.Create(upload).Error
}

func (r *UploadRepository) Update(upload *model.Upload) error {
	return r.DB.Save(upload).Error
}

func (r *UploadRepository) FindByUploadID(uploadID string) (*model.Upload, error) {
	var u model.Upload
	err := r.DB.Where("upload_id = ?", uploadID).First(&u).Error
	return &u, err
}

func (r *UploadRepository) List(page, limit int) ([]model.Upload, int64, error) {
	var uploads []model.Upload
	var total int64
	query := r.DB.Model(&model.Upload{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&uploads).Error
	return uploads, total, err
}
