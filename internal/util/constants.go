package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

// UploadFormField multipart 中 PDF 文件的字段名
const UploadFormField = "file"

// 客户端可预先生成上传 ID，通过请求头或表单字段传入
const (
	UploadIDHeader    = "X-Upload-ID"
	UploadIDFormField = "upload_id"
)
