package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLogInternalError_HidesErrorText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/fail", func(c *gin.Context) {
		LogInternalError(c, errors.New("open /srv/data/questions.json: permission denied"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "permission denied") || strings.Contains(body, "/srv/data") {
		t.Errorf("body leaks error details: %s", body)
	}
	if !strings.Contains(body, "Internal server error") {
		t.Errorf("body = %s, want generic message", body)
	}
}
