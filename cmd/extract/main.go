// 离线提取脚本，不启动 HTTP 服务，直接把 PDF 中的题目追加到题库
//
// 用法: go run ./cmd/extract -input prova.pdf [-config configs/config.yaml] [-dry-run]
//
// -dry-run 只打印提取结果，不写题库也不保存图片。

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"

	"question_extractor/internal/config"
	"question_extractor/internal/extractor"
	"question_extractor/internal/repository"
	"question_extractor/internal/service"
	"question_extractor/pkg/database"
	"question_extractor/pkg/logger"

	"gopkg.in/yaml.v3"
)

// dryRunSaver 只计算图片路径，不落盘
type dryRunSaver struct{}

func (dryRunSaver) SaveImage(ctx context.Context, name string, data []byte) (string, error) {
	return path.Join(service.StaticURLPrefix, name), nil
}

func loadConfig(file string) (*config.Config, error) {
	cfg := config.Default()

	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("配置文件 %s 不存在，使用默认配置", file)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, cfg.EnsureDirs()
}

func main() {
	input := flag.String("input", "", "要提取的 PDF 文件")
	configFile := flag.String("config", "configs/config.yaml", "配置文件")
	dryRun := flag.Bool("dry-run", false, "只打印提取结果，不写入题库")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := extractor.OptionsFromConfig(cfg.Extraction)

	if *dryRun {
		ex := extractor.New(extractor.NewPDFLoader(), extractor.NewTesseractEngine(), dryRunSaver{}, opts)
		res, err := ex.Extract(ctx, *input, extractor.ExamPrefix(filepath.Base(*input)), nil)
		if err != nil {
			log.Fatalf("提取失败: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Questions); err != nil {
			log.Fatalf("输出失败: %v", err)
		}
		return
	}

	var uploadRepo *repository.UploadRepository
	if cfg.Database.Enabled {
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			log.Fatalf("数据库连接失败: %v", err)
		}
		uploadRepo = repository.NewUploadRepository(db)
	}

	storage := service.NewStorageService(cfg)
	ex := extractor.New(extractor.NewPDFLoader(), extractor.NewTesseractEngine(), storage, opts)
	qs := service.NewQuestionService(
		repository.NewQuestionRepository(cfg.Storage.QuestionsFile),
		uploadRepo,
		ex,
		service.NewProgressService(nil),
		cfg,
	)

	res, err := qs.ExtractFile(ctx, *input, filepath.Base(*input), "")
	if err != nil {
		log.Fatalf("提取失败: %v", err)
	}
	log.Printf("完成！提取 %d 道题，%d 张图片，OCR %d 页，题库共 %d 道题", res.Count, res.Images, res.OCRPages, res.Total)
}
