package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"question_extractor/internal/config"
	"question_extractor/internal/extractor"
	"question_extractor/internal/model"
	"question_extractor/internal/repository"
	"question_extractor/internal/service"
	"question_extractor/internal/util"

	"github.com/gin-gonic/gin"
)

type stubExtractor struct {
	bodies []string
	// duringText 在报告 text 阶段之后、返回结果之前调用
	duringText func()
}

func (s *stubExtractor) Extract(ctx context.Context, path, prefix string, progress extractor.ProgressFunc) (*extractor.Result, error) {
	if progress != nil {
		progress(extractor.StageText, 1, len(s.bodies), 0)
	}
	if s.duringText != nil {
		s.duringText()
	}
	res := &extractor.Result{Pages: len(s.bodies)}
	for i, body := range s.bodies {
		res.Questions = append(res.Questions, model.NewQuestion(model.QuestionID(prefix, i+1), model.PlaceholderSubject, body, 800))
	}
	return res, nil
}

func setupRouter(t *testing.T, ex service.PDFExtractor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.UploadPath = filepath.Join(dir, "uploads")
	cfg.Storage.QuestionsFile = filepath.Join(dir, "questions.json")

	repo := repository.NewQuestionRepository(cfg.Storage.QuestionsFile)
	qs := service.NewQuestionService(repo, nil, ex, service.NewProgressService(nil), cfg)
	qc := NewQuestionController(qs)
	uc := NewUploadController(qs)
	hc := NewHealthController(nil, nil, cfg.Storage.QuestionsFile)

	r := gin.New()
	r.GET("/", qc.Index)
	r.POST("/upload", qc.Upload)
	r.GET("/questions", qc.ListQuestions)
	r.GET("/uploads", uc.ListUploads)
	r.GET("/uploads/:id/progress", uc.GetProgress)
	r.GET("/health", hc.HealthCheck)
	return r
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// uploadRequestWithID 通过表单字段携带 upload_id
func uploadRequestWithID(t *testing.T, uploadID string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField(util.UploadIDFormField, uploadID); err != nil {
		t.Fatal(err)
	}
	part, err := w.CreateFormFile(util.UploadFormField, "exam.pdf")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListQuestions_EmptyStore(t *testing.T) {
	r := setupRouter(t, &stubExtractor{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	r := setupRouter(t, &stubExtractor{})

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no multipart body", httptest.NewRequest(http.MethodPost, "/upload", nil)},
		{"wrong field name", uploadRequest(t, "document", "a.pdf", []byte("%PDF-1.4\n"))},
		{"empty file", uploadRequest(t, util.UploadFormField, "a.pdf", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp util.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != "No file uploaded" {
				t.Errorf("error = %q, want %q", resp.Error, "No file uploaded")
			}
		})
	}
}

func TestUpload_NotPDF(t *testing.T) {
	r := setupRouter(t, &stubExtractor{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, util.UploadFormField, "a.pdf", []byte("plain text")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), util.ErrNotPDF.Error()) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpload_ThenList(t *testing.T) {
	r := setupRouter(t, &stubExtractor{bodies: []string{"one", "two", "three"}})

	for _, name := range []string{"exam_a.pdf", "exam_b.pdf"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, util.UploadFormField, name, []byte("%PDF-1.4\n%%EOF\n")))
		if w.Code != http.StatusOK {
			t.Fatalf("upload %s status = %d, body = %s", name, w.Code, w.Body.String())
		}
		var resp util.UploadResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Count != 3 || resp.UploadID == "" || resp.Message == "" {
			t.Errorf("response = %+v", resp)
		}

		pw := httptest.NewRecorder()
		r.ServeHTTP(pw, httptest.NewRequest(http.MethodGet, "/uploads/"+resp.UploadID+"/progress", nil))
		if pw.Code != http.StatusOK {
			t.Errorf("progress status = %d, want 200", pw.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/questions", nil))
	var questions []model.Question
	if err := json.Unmarshal(w.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}
	if len(questions) != 6 {
		t.Fatalf("len(questions) = %d, want 6", len(questions))
	}
	if questions[0].ID != "EXAM_A_Q001" || questions[3].ID != "EXAM_B_Q001" {
		t.Errorf("order = %s, %s", questions[0].ID, questions[3].ID)
	}
}

func TestUploads_HistoryAndProgress(t *testing.T) {
	r := setupRouter(t, &stubExtractor{})

	tests := []struct {
		path string
		want int
	}{
		{"/uploads", http.StatusServiceUnavailable},
		{"/uploads/unknown/progress", http.StatusNotFound},
		{"/health", http.StatusOK},
		{"/", http.StatusOK},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestUpload_ProgressVisibleDuringExtraction(t *testing.T) {
	const id = "3f1c9a52-8e4b-4d7a-9c26-b0e1d7f5a834"
	pdf := []byte("%PDF-1.4\n%%EOF\n")

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"header", func(t *testing.T) *http.Request {
			req := uploadRequest(t, util.UploadFormField, "exam.pdf", pdf)
			req.Header.Set(util.UploadIDHeader, id)
			return req
		}},
		{"form field", func(t *testing.T) *http.Request {
			return uploadRequestWithID(t, id, pdf)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &stubExtractor{bodies: []string{"one", "two"}}
			r := setupRouter(t, ex)

			var mid model.UploadProgress
			midCode := 0
			ex.duringText = func() {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+id+"/progress", nil))
				midCode = w.Code
				json.Unmarshal(w.Body.Bytes(), &mid)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req(t))
			if w.Code != http.StatusOK {
				t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
			}

			if midCode != http.StatusOK {
				t.Fatalf("progress during extraction status = %d, want 200", midCode)
			}
			if mid.Stage != extractor.StageText || mid.UploadID != id {
				t.Errorf("progress during extraction = %+v, want text stage for %s", mid, id)
			}

			var resp util.UploadResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.UploadID != id {
				t.Errorf("upload_id = %q, want %q", resp.UploadID, id)
			}
		})
	}
}

func TestUpload_InvalidUploadID(t *testing.T) {
	r := setupRouter(t, &stubExtractor{})

	req := uploadRequest(t, util.UploadFormField, "exam.pdf", []byte("%PDF-1.4\n%%EOF\n"))
	req.Header.Set(util.UploadIDHeader, "../../etc/passwd")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), util.ErrInvalidUploadID.Error()) {
		t.Errorf("body = %s", w.Body.String())
	}
}
