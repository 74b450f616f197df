package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_uploads_total",
			Help: "Processed PDF uploads by outcome",
		},
		[]string{"status"},
	)

	QuestionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extractor_questions_total",
			Help: "Question records appended to the bank",
		},
	)

	OCRPageCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extractor_ocr_pages_total",
			Help: "Pages passed through OCR",
		},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extractor_duration_seconds",
			Help:    "Wall time of a full PDF extraction",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)

var registerOnce sync.Once

// Init 注册所有指标，重复调用安全（测试会多次构建 App）
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(UploadCounter)
		prometheus.MustRegister(QuestionCounter)
		prometheus.MustRegister(OCRPageCounter)
		prometheus.MustRegister(ExtractionDuration)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// ObserveUpload 记录一次上传的结果
func ObserveUpload(status string, questions, ocrPages int, elapsed time.Duration) {
	UploadCounter.WithLabelValues(status).Inc()
	if questions > 0 {
		QuestionCounter.Add(float64(questions))
	}
	if ocrPages > 0 {
		OCRPageCounter.Add(float64(ocrPages))
	}
	ExtractionDuration.Observe(elapsed.Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
