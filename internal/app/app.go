package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"question_extractor/internal/config"
	"question_extractor/internal/controller"
	"question_extractor/internal/extractor"
	"question_extractor/internal/middleware"
	"question_extractor/internal/repository"
	"question_extractor/internal/service"
	"question_extractor/pkg/configwatcher"
	"question_extractor/pkg/database"
	"question_extractor/pkg/logger"
	"question_extractor/pkg/monitoring"
	"question_extractor/pkg/security"
	"question_extractor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigFile      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Extractor       *extractor.Extractor
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)

	// 后台 goroutine 共用，Run 退出时取消
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	question *repository.QuestionRepository
	upload   *repository.UploadRepository
}

type services struct {
	storage  *service.StorageService
	progress *service.ProgressService
	question *service.QuestionService
}

type controllers struct {
	question *controller.QuestionController
	upload   *controller.UploadController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(cfg *config.Config, db *gorm.DB) *repositories {
	repos := &repositories{
		question: repository.NewQuestionRepository(cfg.Storage.QuestionsFile),
	}
	// 未启用数据库时不记录上传历史
	if db != nil {
		repos.upload = repository.NewUploadRepository(db)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.progress = service.NewProgressService(rdb)

	a.Extractor = extractor.New(
		extractor.NewPDFLoader(),
		extractor.NewTesseractEngine(),
		s.storage,
		extractor.OptionsFromConfig(cfg.Extraction),
	)

	s.question = service.NewQuestionService(repos.question, repos.upload, a.Extractor, s.progress, cfg)
	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		question: controller.NewQuestionController(s.question),
		upload:   controller.NewUploadController(s.question),
		health:   controller.NewHealthController(a.DB, a.Redis, cfg.Storage.QuestionsFile),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 组装所有组件，数据库和 Redis 只在配置启用时连接
func NewApp(cfg *config.Config, configFile string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:     cfg,
		ConfigFile: configFile,
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.Database.Enabled {
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		app.DB = db
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("question-extractor", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(cfg, app.DB)
	services := app.initServices(repos, cfg, app.Redis)
	controllers := app.initControllers(services, cfg)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	// 配置热更新只影响提取参数，其他配置需重启
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Extractor.SetOptions(extractor.OptionsFromConfig(newCfg.Extraction))
		logger.Log.Info("Extraction options updated",
			zap.String("text_engine", newCfg.Extraction.TextEngine),
			zap.Bool("ocr_enabled", newCfg.Extraction.OCREnabled),
		)
	})

	return app
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	if a.ConfigFile == "" {
		return
	}
	if _, err := os.Stat(a.ConfigFile); err != nil {
		logger.Log.Info("Config file not found, hot reload disabled", zap.String("file", a.ConfigFile))
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	defer logger.Log.Sync()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	defer a.cancel()
	a.startBackgroundTasks(a.ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	a.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	logger.Log.Info("Server exiting")
}

// ConfigFilePath configs 目录下的 config.yaml
func ConfigFilePath(dir string) string {
	return filepath.Join(dir, "config.yaml")
}
