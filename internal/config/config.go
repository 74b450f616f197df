package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors" yaml:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"`
	// MaxUploadMB caps the request body of POST /upload.
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// StorageConfig 描述题库文件、上传文件和图片的存放位置
type StorageConfig struct {
	Type          string `mapstructure:"type" yaml:"type"`
	QuestionsFile string `mapstructure:"questions_file" yaml:"questions_file"`
	UploadPath    string `mapstructure:"upload_path" yaml:"upload_path"`
	StaticPath    string `mapstructure:"static_path" yaml:"static_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint" yaml:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key" yaml:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key" yaml:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket" yaml:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure" yaml:"minio_secure"`
	OSSEndpoint   string `mapstructure:"oss_endpoint" yaml:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key" yaml:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key" yaml:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket" yaml:"oss_bucket"`
}

type ExtractionConfig struct {
	// TextEngine selects the page text backend: "fitz" or "ledongthuc".
	TextEngine   string   `mapstructure:"text_engine" yaml:"text_engine"`
	OCREnabled   bool     `mapstructure:"ocr_enabled" yaml:"ocr_enabled"`
	OCRLanguages []string `mapstructure:"ocr_languages" yaml:"ocr_languages"`
	RenderDPI    float64  `mapstructure:"render_dpi" yaml:"render_dpi"`
	PreviewRunes int      `mapstructure:"preview_runes" yaml:"preview_runes"`
}

// DatabaseConfig 上传历史记录使用的 MySQL，Enabled 为 false 时不连接
type DatabaseConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	User      string `mapstructure:"user" yaml:"user"`
	Password  string `mapstructure:"password" yaml:"password"`
	DBName    string `mapstructure:"dbname" yaml:"dbname"`
	Charset   string `mapstructure:"charset" yaml:"charset"`
	ParseTime bool   `mapstructure:"parse_time" yaml:"parse_time"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint" yaml:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests" yaml:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes" yaml:"window_minutes"`
}

// Default 返回不依赖配置文件的默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release", MaxUploadMB: 64},
		Storage: StorageConfig{
			Type:          "local",
			QuestionsFile: "data/questions.json",
			UploadPath:    "uploads",
			StaticPath:    "static",
		},
		Extraction: ExtractionConfig{
			TextEngine:   "fitz",
			OCREnabled:   true,
			OCRLanguages: []string{"por"},
			RenderDPI:    200,
			PreviewRunes: 800,
		},
		Database:  DatabaseConfig{Host: "localhost", Port: 3306, Charset: "utf8mb4", ParseTime: true},
		Redis:     RedisConfig{Host: "localhost", Port: 6379},
		CORS:      CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: RateLimitConfig{MaxRequests: 600, WindowMinutes: 1},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.questions_file", d.Storage.QuestionsFile)
	v.SetDefault("storage.upload_path", d.Storage.UploadPath)
	v.SetDefault("storage.static_path", d.Storage.StaticPath)

	v.SetDefault("extraction.text_engine", d.Extraction.TextEngine)
	v.SetDefault("extraction.ocr_enabled", d.Extraction.OCREnabled)
	v.SetDefault("extraction.ocr_languages", d.Extraction.OCRLanguages)
	v.SetDefault("extraction.render_dpi", d.Extraction.RenderDPI)
	v.SetDefault("extraction.preview_runes", d.Extraction.PreviewRunes)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.charset", d.Database.Charset)
	v.SetDefault("database.parse_time", d.Database.ParseTime)

	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("rate_limit.max_requests", d.RateLimit.MaxRequests)
	v.SetDefault("rate_limit.window_minutes", d.RateLimit.WindowMinutes)
}

// LoadConfig 读取 path 目录下的 config.yaml，文件不存在时使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QEXTRACT")
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.questions_file", "QUESTIONS_FILE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")

	// Extraction
	v.BindEnv("extraction.text_engine", "TEXT_ENGINE")
	v.BindEnv("extraction.ocr_enabled", "OCR_ENABLED")

	// Database
	v.BindEnv("database.enabled", "DATABASE_ENABLED")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 检查无法在运行时修正的配置项
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}
	switch c.Extraction.TextEngine {
	case "fitz", "ledongthuc":
	default:
		return fmt.Errorf("unknown extraction.text_engine %q", c.Extraction.TextEngine)
	}
	if c.Extraction.PreviewRunes <= 0 {
		return fmt.Errorf("extraction.preview_runes must be positive, got %d", c.Extraction.PreviewRunes)
	}
	if c.Extraction.RenderDPI <= 0 {
		return fmt.Errorf("extraction.render_dpi must be positive, got %v", c.Extraction.RenderDPI)
	}
	if c.Storage.QuestionsFile == "" {
		return fmt.Errorf("storage.questions_file is required")
	}
	return nil
}

// EnsureDirs 创建题库、上传和静态图片目录
func (c *Config) EnsureDirs() error {
	dirs := []string{
		filepath.Dir(c.Storage.QuestionsFile),
		c.Storage.UploadPath,
		filepath.Join(c.Storage.StaticPath, "images"),
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
