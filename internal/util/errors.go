package util

import "errors"

var (
	ErrNoFileUploaded  = errors.New("No file uploaded")
	ErrNotPDF          = errors.New("Only PDF files are accepted")
	ErrUploadNotFound  = errors.New("upload not found")
	ErrInvalidUploadID = errors.New("upload_id must be a UUID")
	ErrHistoryDisabled = errors.New("upload history requires a database")
)
