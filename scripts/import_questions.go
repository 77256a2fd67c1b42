// 手动批量导入题库脚本
//
// 导入功能已集成到主应用的 /api/admin/questions/import 接口。
// 此脚本仅用于绕过 HTTP 直接导入，例如首次部署时灌入完整题库。
//
// 用法: go run scripts/import_questions.go <questions.json>

package main

import (
	"context"
	"log"
	"os"

	"uas_practice_backend/internal/config"
	"uas_practice_backend/internal/repository"
	"uas_practice_backend/internal/service"
	"uas_practice_backend/pkg/database"
	"uas_practice_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("用法: go run scripts/import_questions.go <questions.json>")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis 连接失败: %v", err)
	}

	payload, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("无法读取题库文件: %v", err)
	}

	records, err := service.ParseQuestionImport(payload)
	if err != nil {
		log.Fatalf("题库文件解析失败: %v", err)
	}

	if err := repository.NewQuestionRepository(db).CreateBatch(records); err != nil {
		log.Fatalf("题库写入失败: %v", err)
	}

	repository.NewCatalogNotifier(rdb).Publish(context.Background())
	log.Printf("导入完成，共 %d 条", len(records))
}
