// @title Question Extractor API
// @version 1.0
// @description 从试卷 PDF 中提取题目并维护 JSON 题库。

// @host localhost:8080
// @BasePath /

package main

import (
	"flag"
	"log"

	"question_extractor/internal/app"
	"question_extractor/internal/config"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg, app.ConfigFilePath(*configDir))
	application.Run()
}
